// Package telemetry provides engagement statistics, per-projectile flight
// records, tick timing and CSV output.
package telemetry

// EventType identifies telemetry events.
type EventType uint8

const (
	EventShot EventType = iota
	EventPenetration
	EventStop
	EventRicochet
	EventSoftHit
	EventDetonation
	EventExpire
	EventFault

	eventTypeCount
)

func (e EventType) String() string {
	switch e {
	case EventShot:
		return "shot"
	case EventPenetration:
		return "penetration"
	case EventStop:
		return "stop"
	case EventRicochet:
		return "ricochet"
	case EventSoftHit:
		return "soft_hit"
	case EventDetonation:
		return "detonation"
	case EventExpire:
		return "expire"
	case EventFault:
		return "fault"
	default:
		return "unknown"
	}
}

// Event represents a single telemetry event.
type Event struct {
	Type         EventType
	Tick         int32
	ProjectileID uint32

	// Impact is set when the event came from a collider contact.
	Impact bool
	Speed  float64 // m/s at the event
}

// NewShotEvent creates a shot event.
func NewShotEvent(tick int32, id uint32, muzzleSpeed float64) Event {
	return Event{Type: EventShot, Tick: tick, ProjectileID: id, Speed: muzzleSpeed}
}

// NewImpactEvent creates an event for a resolved hit.
func NewImpactEvent(typ EventType, tick int32, id uint32, speed float64) Event {
	return Event{Type: typ, Tick: tick, ProjectileID: id, Impact: true, Speed: speed}
}

// NewDetonationEvent creates a detonation that did not come from a hit
// (proximity, timer or water).
func NewDetonationEvent(tick int32, id uint32) Event {
	return Event{Type: EventDetonation, Tick: tick, ProjectileID: id}
}

// NewExpireEvent creates an end-of-life event.
func NewExpireEvent(tick int32, id uint32) Event {
	return Event{Type: EventExpire, Tick: tick, ProjectileID: id}
}

// NewFaultEvent records a projectile removed after a recovered panic.
func NewFaultEvent(tick int32, id uint32) Event {
	return Event{Type: EventFault, Tick: tick, ProjectileID: id}
}
