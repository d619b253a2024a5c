package render

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultBannerTTL is how long an error notice stays up unless dismissed
const DefaultBannerTTL = 5 * time.Second

// Notice is one error message in the banner region
type Notice struct {
	ID      uuid.UUID
	Message string
	Shown   time.Time
}

// Banner shows dismissible error notices that expire on their own.
// The banner region is written under the banner lock so concurrent expiries
// cannot publish stale content.
type Banner struct {
	surface Surface
	ttl     time.Duration

	mu      sync.Mutex
	notices []Notice
	timers  map[uuid.UUID]*time.Timer
}

// NewBanner creates a banner writing to the banner region of surface
func NewBanner(surface Surface, ttl time.Duration) *Banner {
	if ttl <= 0 {
		ttl = DefaultBannerTTL
	}
	return &Banner{
		surface: surface,
		ttl:     ttl,
		timers:  make(map[uuid.UUID]*time.Timer),
	}
}

// Show adds a notice and schedules its expiry
func (b *Banner) Show(message string) uuid.UUID {
	notice := Notice{ID: uuid.New(), Message: message, Shown: time.Now()}

	b.mu.Lock()
	b.notices = append(b.notices, notice)
	b.timers[notice.ID] = time.AfterFunc(b.ttl, func() { b.Dismiss(notice.ID) })
	b.surface.Update(RegionBanner, b.contentLocked())
	b.mu.Unlock()

	return notice.ID
}

// Dismiss removes the notice with id; it reports false if the notice is already gone
func (b *Banner) Dismiss(id uuid.UUID) bool {
	b.mu.Lock()
	idx := -1
	for i, n := range b.notices {
		if n.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		b.mu.Unlock()
		return false
	}

	b.notices = append(b.notices[:idx], b.notices[idx+1:]...)
	if t, ok := b.timers[id]; ok {
		t.Stop()
		delete(b.timers, id)
	}
	b.surface.Update(RegionBanner, b.contentLocked())
	b.mu.Unlock()

	return true
}

// DismissLatest removes the most recent notice
func (b *Banner) DismissLatest() bool {
	b.mu.Lock()
	if len(b.notices) == 0 {
		b.mu.Unlock()
		return false
	}
	id := b.notices[len(b.notices)-1].ID
	b.mu.Unlock()

	return b.Dismiss(id)
}

// Active returns the notices currently shown, oldest first
func (b *Banner) Active() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Notice, len(b.notices))
	copy(out, b.notices)
	return out
}

// Close stops every pending expiry timer
func (b *Banner) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, t := range b.timers {
		t.Stop()
		delete(b.timers, id)
	}
}

func (b *Banner) contentLocked() string {
	if len(b.notices) == 0 {
		return ""
	}
	lines := make([]string, 0, len(b.notices))
	for _, n := range b.notices {
		lines = append(lines, bannerStyle.Render("⚠ "+n.Message+"  [x]"))
	}
	return strings.Join(lines, "\n")
}
