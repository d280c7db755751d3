package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"sobot/internal/core/port"

	"github.com/rs/zerolog/log"
)

const watermarkNamespace = "monitor_watermark"

// Monitor periodically fetches a ranked feed and broadcasts one notification
// per newly appeared item, ascending by ID, to every subscribed room. The tick
// loop is the only goroutine that touches the watermark, so polls for one
// monitor never overlap.
type Monitor struct {
	source port.Source
	sender port.Sender
	kv     port.KeyValue
	period time.Duration

	mu    sync.Mutex
	rooms map[string]bool

	watermark int
	seeded    bool
}

// NewMonitor creates a monitor and restores a persisted watermark if one
// exists; a restored monitor starts armed and will notify on the first poll.
func NewMonitor(source port.Source, sender port.Sender, kv port.KeyValue, period time.Duration) *Monitor {
	m := &Monitor{
		source: source,
		sender: sender,
		kv:     kv,
		period: period,
		rooms:  make(map[string]bool),
	}

	if kv != nil {
		value, ok, err := kv.Get(context.Background(), watermarkNamespace, source.GetName())
		if err != nil {
			log.Warn().Err(err).Str("monitor", source.GetName()).Msg("could not restore watermark")
		} else if ok {
			if watermark, err := strconv.Atoi(value); err == nil {
				m.watermark = watermark
				m.seeded = true
			}
		}
	}

	return m
}

func (m *Monitor) Subscribe(room string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room] = true
}

func (m *Monitor) Unsubscribe(room string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, room)
}

// Run drives the poll loop until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	log.Info().Str("monitor", m.source.GetName()).Dur("period", m.period).Msg("starting monitor")

	ticker := time.NewTicker(m.period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.poll(ctx)
		case <-ctx.Done():
			log.Info().Str("monitor", m.source.GetName()).Msg("stopping monitor")
			return
		}
	}
}

func (m *Monitor) poll(ctx context.Context) {
	l := log.With().Str("monitor", m.source.GetName()).Logger()

	items, err := m.source.Fetch(ctx)
	if err != nil {
		l.Warn().Err(err).Msg("poll attempt failed")
		return
	}

	if len(items) == 0 {
		return
	}

	newest := items[0].ID
	for _, item := range items {
		if item.ID > newest {
			newest = item.ID
		}
	}

	if !m.seeded {
		l.Info().Int("watermark", newest).Msg("seeding watermark")
		m.seeded = true
		m.commit(ctx, newest)
		return
	}

	var unseen []int
	byID := make(map[int]int, len(items))
	for i, item := range items {
		if item.ID <= m.watermark {
			continue
		}
		if _, seen := byID[item.ID]; seen {
			continue
		}
		unseen = append(unseen, item.ID)
		byID[item.ID] = i
	}
	sort.Ints(unseen)

	rooms := m.subscribedRooms()

	for _, id := range unseen {
		item := items[byID[id]]
		for _, room := range rooms {
			if _, err := m.sender.PostMessage(ctx, room, m.source.Render(item)); err != nil {
				l.Error().Err(err).Str("room", room).Int("item", item.ID).Msg("failed to post notification")
			}
		}
	}

	// An interrupted poll must not advance the watermark; the next tick
	// re-reports rather than losing items.
	if ctx.Err() != nil {
		return
	}

	m.commit(ctx, newest)
}

func (m *Monitor) commit(ctx context.Context, watermark int) {
	m.watermark = watermark

	if m.kv == nil {
		return
	}

	err := m.kv.Set(ctx, watermarkNamespace, m.source.GetName(), strconv.Itoa(watermark))
	if err != nil {
		log.Warn().Err(err).Str("monitor", m.source.GetName()).Msg("could not persist watermark")
	}
}

func (m *Monitor) subscribedRooms() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	rooms := make([]string, 0, len(m.rooms))
	for room := range m.rooms {
		rooms = append(rooms, room)
	}
	sort.Strings(rooms)

	return rooms
}
