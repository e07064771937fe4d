package reminders

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/georemind/georemind/internal/client/models"
	"github.com/georemind/georemind/internal/common"
)

// IdentifierKind discriminates the ways a caller can address a reminder.
type IdentifierKind int

const (
	// KindLocalID addresses a reminder by its client-generated localId.
	KindLocalID IdentifierKind = iota

	// KindServerID addresses a reminder by its backend identifier. No
	// positional fallback is applied.
	KindServerID

	// KindLegacyIndex addresses a reminder by its 0-based position in the
	// collection. Kept for old navigation call sites that only had a list
	// index.
	KindLegacyIndex

	// KindNumeric is an ambiguous number from an untyped call site: it is
	// resolved as a backend identifier first and falls back to a legacy
	// index when no record carries that id.
	KindNumeric

	// KindOpaque is an untyped string: resolved by localId first, then by
	// title (the fallback the UI relied on before local ids existed).
	KindOpaque
)

// Identifier is a tagged reminder address. Callers that know what they hold
// construct the precise kind; ParseIdentifier covers call sites that only
// have an opaque string.
type Identifier struct {
	kind   IdentifierKind
	text   string
	number int64
}

// LocalID addresses a reminder by localId.
func LocalID(id string) Identifier {
	return Identifier{kind: KindLocalID, text: id}
}

// ServerID addresses a reminder by its backend id.
func ServerID(id int64) Identifier {
	return Identifier{kind: KindServerID, number: id}
}

// LegacyIndex addresses a reminder by list position.
func LegacyIndex(i int) Identifier {
	return Identifier{kind: KindLegacyIndex, number: int64(i)}
}

// ByTitle addresses a reminder by exact title match.
func ByTitle(title string) Identifier {
	return Identifier{kind: KindOpaque, text: title}
}

// ParseIdentifier classifies an opaque identifier string:
// a "local_"-prefixed value is a localId, an integer is an ambiguous numeric
// id, anything else is matched by localId and then by title. A URL-encoded
// title (as passed through navigation routes) is decoded for the title match.
func ParseIdentifier(s string) Identifier {
	if models.IsLocalID(s) {
		return LocalID(s)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Identifier{kind: KindNumeric, number: n, text: s}
	}
	return Identifier{kind: KindOpaque, text: s}
}

// Kind returns the identifier's discriminator.
func (id Identifier) Kind() IdentifierKind { return id.kind }

func (id Identifier) String() string {
	switch id.kind {
	case KindLocalID:
		return id.text
	case KindServerID, KindNumeric:
		return strconv.FormatInt(id.number, 10)
	case KindLegacyIndex:
		return fmt.Sprintf("#%d", id.number)
	default:
		return id.text
	}
}

// Resolve locates the addressed reminder within rs and returns its index,
// or common.ErrNotFound. It never silently no-ops: every unresolvable
// identifier is an error for the caller to surface.
func (id Identifier) Resolve(rs []models.Reminder) (int, error) {
	switch id.kind {
	case KindLocalID:
		for i := range rs {
			if rs[i].LocalID == id.text {
				return i, nil
			}
		}

	case KindServerID:
		if i := indexByBackendID(rs, id.number); i >= 0 {
			return i, nil
		}

	case KindNumeric:
		if i := indexByBackendID(rs, id.number); i >= 0 {
			return i, nil
		}
		// Legacy compatibility: treat the number as a list position when
		// no record carries it as a backend id.
		if id.number >= 0 && id.number < int64(len(rs)) {
			return int(id.number), nil
		}

	case KindLegacyIndex:
		if id.number >= 0 && id.number < int64(len(rs)) {
			return int(id.number), nil
		}

	case KindOpaque:
		for i := range rs {
			if rs[i].LocalID == id.text {
				return i, nil
			}
		}
		title := id.text
		if decoded, err := url.QueryUnescape(id.text); err == nil {
			title = decoded
		}
		for i := range rs {
			if rs[i].Title == title {
				return i, nil
			}
		}
	}

	return -1, fmt.Errorf("%w: reminder %s", common.ErrNotFound, id)
}

func indexByBackendID(rs []models.Reminder, n int64) int {
	if n == 0 {
		return -1
	}
	for i := range rs {
		if rs[i].ServerID == n || rs[i].ID == n {
			return i
		}
	}
	return -1
}
