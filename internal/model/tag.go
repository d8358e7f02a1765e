package model

import (
	"fmt"
	"strconv"
	"strings"
)

// TagKind discriminates the variants of an EscalationTag.
type TagKind int

// Tag kinds. TagNone marks a notification that is never deduplicated.
const (
	TagNone TagKind = iota
	TagTwentyFourHour
	TagToday
	TagTier
	TagStatus
)

// EscalationTag identifies which reminder variant a notification represents.
// It is the dedup key component stored next to the subject and the day bucket.
type EscalationTag struct {
	Kind   TagKind
	Tier   Tier
	Status InterventionStatus
}

// Tag constructors.
var (
	NoTag             = EscalationTag{}
	TwentyFourHourTag = EscalationTag{Kind: TagTwentyFourHour}
	TodayTag          = EscalationTag{Kind: TagToday}
)

// TierTag returns the tag of an invoice reminder tier.
func TierTag(t Tier) EscalationTag {
	return EscalationTag{Kind: TagTier, Tier: t}
}

// StatusTag returns the tag of a notified status change.
func StatusTag(s InterventionStatus) EscalationTag {
	return EscalationTag{Kind: TagStatus, Status: s}
}

// IsZero reports whether the tag is unset.
func (t EscalationTag) IsZero() bool {
	return t.Kind == TagNone
}

// Matches reports whether two tags designate the same variant.
// An unset tag never matches anything, including another unset tag.
func (t EscalationTag) Matches(other EscalationTag) bool {
	if t.IsZero() || other.IsZero() {
		return false
	}
	return t == other
}

// String renders the stored form: "24h", "today", "tier:N" or "status:S".
func (t EscalationTag) String() string {
	switch t.Kind {
	case TagTwentyFourHour:
		return "24h"
	case TagToday:
		return "today"
	case TagTier:
		return fmt.Sprintf("tier:%d", int(t.Tier))
	case TagStatus:
		return "status:" + string(t.Status)
	default:
		return ""
	}
}

// ParseEscalationTag parses the stored form of a tag. The empty string is NoTag.
func ParseEscalationTag(s string) (EscalationTag, error) {
	switch s {
	case "":
		return NoTag, nil
	case "24h":
		return TwentyFourHourTag, nil
	case "today":
		return TodayTag, nil
	}
	if rest, ok := strings.CutPrefix(s, "status:"); ok {
		if !knownStatus(InterventionStatus(rest)) {
			return NoTag, fmt.Errorf("invalid status in escalation tag %q", s)
		}
		return StatusTag(InterventionStatus(rest)), nil
	}
	rest, ok := strings.CutPrefix(s, "tier:")
	if !ok {
		return NoTag, fmt.Errorf("unknown escalation tag %q", s)
	}
	n, err := strconv.Atoi(rest)
	if err != nil || !Tier(n).IsValid() {
		return NoTag, fmt.Errorf("invalid tier in escalation tag %q", s)
	}
	return TierTag(Tier(n)), nil
}

func knownStatus(s InterventionStatus) bool {
	return s == StatusInProgress || s.IsPersisted()
}

// MarshalText implements encoding.TextMarshaler.
func (t EscalationTag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Malformed tags decode to
// NoTag instead of failing, so a damaged record reads as "no prior reminder".
func (t *EscalationTag) UnmarshalText(b []byte) error {
	parsed, err := ParseEscalationTag(string(b))
	if err != nil {
		*t = NoTag
		return nil
	}
	*t = parsed
	return nil
}
