package domain

import "time"

// Field limits applied by the sanitizer, counted in runes.
const (
	MaxIDLength        = 80
	MaxNicknameLength  = 80
	MaxIntroLength     = 2000
	MaxAvatarURLLength = 2000
)

// TimestampLayout is the wire and storage format of UpdatedAt.
const TimestampLayout = time.RFC3339Nano

// StaffRecord is one roster entry shown on the public page.
type StaffRecord struct {
	ID        string `json:"id"`
	Nickname  string `json:"nickname"`
	Intro     string `json:"intro"`
	AvatarURL string `json:"avatarUrl"`
	Order     int    `json:"order"`
	UpdatedAt string `json:"updatedAt"`
}

// StaffList is an ordered roster. Ids are unique by convention only; imported
// data may carry duplicates and lookups take the first match.
type StaffList []StaffRecord

// Clone returns a copy that shares no backing array with l.
func (l StaffList) Clone() StaffList {
	if l == nil {
		return StaffList{}
	}
	out := make(StaffList, len(l))
	copy(out, l)
	return out
}

// IndexOf returns the position of the first record with id, or -1.
func (l StaffList) IndexOf(id string) int {
	for i := range l {
		if l[i].ID == id {
			return i
		}
	}
	return -1
}

// CacheEntry is the local cache contents: a list plus when it was stored.
type CacheEntry struct {
	List     StaffList
	CachedAt time.Time
}
