package playback

import (
	"fmt"

	"github.com/desertthunder/fishstation/internal/models"
)

// Event reports progress of a playlist traversal to the console.
//
// Events are sent without blocking; a slow reader misses updates rather than stalling playback.
type Event struct {
	Kind     EventKind
	Position int          // Track position in the playlist, -1 for foreground and run-level events
	Track    models.Track // Zero for run-level events
	Err      error
	Message  string // Human-readable message for display
}

// EventKind enumerates traversal events
type EventKind int

const (
	TrackStarted EventKind = iota
	TrackRefused
	TrackFailed
	TraversalDone
	TraversalStopped
)

func (k EventKind) String() string {
	switch k {
	case TrackStarted:
		return "track_started"
	case TrackRefused:
		return "track_refused"
	case TrackFailed:
		return "track_failed"
	case TraversalDone:
		return "traversal_done"
	case TraversalStopped:
		return "traversal_stopped"
	default:
		return ""
	}
}

func trackStartedEvent(pos int, t models.Track) Event {
	return Event{
		Kind:     TrackStarted,
		Position: pos,
		Track:    t,
		Message:  fmt.Sprintf("playing: %s, duration is %d s", t.Label(), t.Duration),
	}
}

func trackRefusedEvent(pos int, t models.Track) Event {
	return Event{
		Kind:     TrackRefused,
		Position: pos,
		Track:    t,
		Message:  fmt.Sprintf("could not play %s, this track may need a VIP account", t.Label()),
	}
}

func trackFailedEvent(pos int, t models.Track, err error) Event {
	return Event{
		Kind:     TrackFailed,
		Position: pos,
		Track:    t,
		Err:      err,
		Message:  fmt.Sprintf("failed to play %s: %v", t.Label(), err),
	}
}

func traversalDoneEvent(total int) Event {
	return Event{
		Kind:     TraversalDone,
		Position: -1,
		Message:  fmt.Sprintf("playlist finished (%d tracks)", total),
	}
}

func traversalStoppedEvent(played, total int) Event {
	return Event{
		Kind:     TraversalStopped,
		Position: -1,
		Message:  fmt.Sprintf("playlist stopped after %d of %d tracks", played, total),
	}
}
