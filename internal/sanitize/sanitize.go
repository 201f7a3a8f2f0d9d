// Package sanitize turns untrusted staff data into well-formed records.
//
// Input may come from a hand-edited import, the remote store or the local
// cache; none of them is trusted. Sanitizing never fails: missing or
// malformed fields degrade to empty values and a missing id is synthesized.
package sanitize

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/spec-kit/staff-roster/internal/domain"
)

// idNamespace seeds name-based ids for records that arrive without one.
var idNamespace = uuid.MustParse("6f1c3a52-5d0e-4f43-9a8e-2b7c4e1d9f60")

// legacy field names accepted from older exports, per canonical field.
var legacyAliases = map[string][]string{
	"nickname":  {"name"},
	"intro":     {"bio", "description"},
	"avatarUrl": {"avatar"},
}

// Option configures a Sanitizer.
type Option func(*Sanitizer)

// WithClock sets the wall-clock used for synthesized ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Sanitizer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLegacyAliases toggles acceptance of legacy field names.
func WithLegacyAliases(enabled bool) Option {
	return func(s *Sanitizer) {
		s.legacyAliases = enabled
	}
}

// Sanitizer normalizes staff records and lists.
type Sanitizer struct {
	now           func() time.Time
	legacyAliases bool
}

// New builds a Sanitizer. Legacy aliases are accepted unless disabled.
func New(opts ...Option) *Sanitizer {
	s := &Sanitizer{now: time.Now, legacyAliases: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var std = New()

// Sanitize cleans one record with the default Sanitizer.
func Sanitize(raw any, index int) domain.StaffRecord {
	return std.Record(raw, index)
}

// SanitizeList cleans a list with the default Sanitizer.
func SanitizeList(raw any) domain.StaffList {
	return std.List(raw)
}

// SanitizeJSON decodes and cleans a list with the default Sanitizer.
func SanitizeJSON(data []byte) domain.StaffList {
	return std.JSON(data)
}

// Record turns raw into a well-formed record at position index. raw is
// usually a decoded JSON object; anything else is treated as empty.
func (s *Sanitizer) Record(raw any, index int) domain.StaffRecord {
	fields := asFields(raw)
	now := s.now()

	id := capText(text(fields["id"]), domain.MaxIDLength)
	if id == "" {
		id = synthesizeID(index, now)
	}

	// avatars are kept verbatim or dropped; a cut URL would point elsewhere
	avatar := text(s.field(fields, "avatarUrl"))
	if utf8.RuneCountInString(avatar) > domain.MaxAvatarURLLength || !IsHTTPURL(avatar) {
		avatar = ""
	}

	return domain.StaffRecord{
		ID:        id,
		Nickname:  capText(text(s.field(fields, "nickname")), domain.MaxNicknameLength),
		Intro:     capText(text(s.field(fields, "intro")), domain.MaxIntroLength),
		AvatarURL: avatar,
		Order:     index,
		UpdatedAt: timestamp(fields["updatedAt"], now),
	}
}

// List cleans every element of raw and renumbers order to match position.
// A raw value that is not a list yields an empty list.
func (s *Sanitizer) List(raw any) domain.StaffList {
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case domain.StaffList:
		items = recordsAsAny(v)
	case []domain.StaffRecord:
		items = recordsAsAny(v)
	case []map[string]any:
		items = make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
	case json.RawMessage:
		return s.JSON(v)
	}

	out := make(domain.StaffList, 0, len(items))
	for i, item := range items {
		out = append(out, s.Record(item, i))
	}
	for i := range out {
		out[i].Order = i
	}
	return out
}

// JSON decodes data and cleans the result. Malformed JSON yields an empty list.
func (s *Sanitizer) JSON(data []byte) domain.StaffList {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.StaffList{}
	}
	return s.List(raw)
}

// field returns the canonical value, falling back to legacy names.
func (s *Sanitizer) field(fields map[string]any, canonical string) any {
	if v, ok := fields[canonical]; ok && v != nil {
		return v
	}
	if !s.legacyAliases {
		return nil
	}
	for _, alias := range legacyAliases[canonical] {
		if v, ok := fields[alias]; ok && v != nil {
			return v
		}
	}
	return nil
}

// IsHTTPURL reports whether raw parses as an absolute http or https URL.
func IsHTTPURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

func asFields(raw any) map[string]any {
	switch v := raw.(type) {
	case map[string]any:
		return v
	case domain.StaffRecord:
		return recordFields(v)
	case *domain.StaffRecord:
		if v != nil {
			return recordFields(*v)
		}
	}
	return map[string]any{}
}

func recordFields(r domain.StaffRecord) map[string]any {
	return map[string]any{
		"id":        r.ID,
		"nickname":  r.Nickname,
		"intro":     r.Intro,
		"avatarUrl": r.AvatarURL,
		"updatedAt": r.UpdatedAt,
	}
}

func recordsAsAny(list []domain.StaffRecord) []any {
	out := make([]any, len(list))
	for i := range list {
		out[i] = list[i]
	}
	return out
}

// text coerces scalar JSON values to a trimmed string.
func text(v any) string {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		s = x.String()
	case int:
		s = strconv.Itoa(x)
	case int64:
		s = strconv.FormatInt(x, 10)
	case bool:
		s = strconv.FormatBool(x)
	}
	return strings.TrimSpace(s)
}

// capText truncates s to max runes. Whitespace exposed by the cut is
// trimmed so a second pass leaves the value unchanged.
func capText(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max]))
}

// maxEpochMillis is the last millisecond of year 9999; later values do not
// round-trip through RFC 3339.
const maxEpochMillis = 253402300799999

// timestamp keeps a parseable incoming value and stamps now otherwise.
// Older exports carry epoch milliseconds.
func timestamp(v any, now time.Time) string {
	switch x := v.(type) {
	case string:
		if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(x)); err == nil {
			return t.UTC().Format(domain.TimestampLayout)
		}
	case float64:
		if x > 0 && x <= maxEpochMillis {
			return time.UnixMilli(int64(x)).UTC().Format(domain.TimestampLayout)
		}
	}
	return now.UTC().Format(domain.TimestampLayout)
}

func synthesizeID(index int, now time.Time) string {
	name := fmt.Sprintf("%d@%d", index, now.UnixNano())
	return uuid.NewSHA1(idNamespace, []byte(name)).String()
}
