package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rentsync/internal/app/services"
	domainbooking "rentsync/internal/domain/booking"
	domainrooms "rentsync/internal/domain/rooms"
	"rentsync/internal/domain/shared/daterange"
	"rentsync/internal/domain/shared/money"
	"rentsync/internal/infra/storage/memory"
)

var testClock = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

type stubFetcher struct {
	mu    sync.Mutex
	body  string
	err   error
	calls int
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.body, nil
}

type capturedEvent struct {
	Topic   string
	Key     string
	Payload []byte
}

type stubPublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (p *stubPublisher) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, capturedEvent{Topic: topic, Key: key, Payload: payload})
	return nil
}

type publishedFeed struct {
	Slug    string
	Payload string
}

type stubUploader struct {
	mu    sync.Mutex
	feeds []publishedFeed
}

func (u *stubUploader) PublishFeed(ctx context.Context, slug, payload string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.feeds = append(u.feeds, publishedFeed{Slug: slug, Payload: payload})
	return "https://cdn.test/feeds/" + slug + ".ics", nil
}

type testEnv struct {
	core      *services.Core
	factory   memory.Factory
	fetcher   *stubFetcher
	publisher *stubPublisher
	uploader  *stubUploader
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	factory := memory.NewFactory()
	fetcher := &stubFetcher{}
	publisher := &stubPublisher{}
	uploader := &stubUploader{}

	var seqMu sync.Mutex
	seq := 0
	core, err := services.New(services.Options{
		UoWFactory: factory,
		Fetcher:    fetcher,
		Publisher:  publisher,
		Uploader:   uploader,
		Now:        func() time.Time { return testClock },
		NewID: func() string {
			seqMu.Lock()
			defer seqMu.Unlock()
			seq++
			return fmt.Sprintf("id-%03d", seq)
		},
	})
	require.NoError(t, err)
	return &testEnv{core: core, factory: factory, fetcher: fetcher, publisher: publisher, uploader: uploader}
}

func (e *testEnv) seedRoom(t *testing.T, id string) *domainrooms.Room {
	t.Helper()
	room, err := domainrooms.NewRoom(domainrooms.CreateParams{
		ID:             domainrooms.RoomID(id),
		Slug:           id,
		Name:           "Room " + id,
		BasePrice:      money.Must(10000, "USD"),
		ServiceFeeRate: 0.10,
		TaxRate:        0.05,
		Now:            testClock,
	})
	require.NoError(t, err)
	require.NoError(t, e.factory.RoomRepo.Save(context.Background(), room))
	return room
}

func (e *testEnv) seedConfirmedBooking(t *testing.T, id, roomID, start, end string) *domainbooking.Booking {
	t.Helper()
	stay, err := daterange.Parse(start, end)
	require.NoError(t, err)
	b := &domainbooking.Booking{
		ID:               domainbooking.BookingID(id),
		RoomID:           domainrooms.RoomID(roomID),
		ConfirmationCode: "CONF-" + id,
		Stay:             stay,
		Guests:           2,
		Status:           domainbooking.StatusConfirmed,
		CreatedAt:        testClock,
		UpdatedAt:        testClock,
	}
	require.NoError(t, e.factory.BookingRepo.Save(context.Background(), b))
	return b
}

func mustRange(t *testing.T, start, end string) daterange.DateRange {
	t.Helper()
	r, err := daterange.Parse(start, end)
	require.NoError(t, err)
	return r
}
