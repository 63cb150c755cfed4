package domain

const (
	// SpaceNameMinLen and SpaceNameMaxLen bound every space name, primary and
	// child alike.
	SpaceNameMinLen = 3
	SpaceNameMaxLen = 10
)

// Space is one leasable namespace entry. ParentID 0 marks a primary space
// whose name is globally unique; child spaces are unique only within their
// parent and render as "<child>.<parent>". UserID is the current
// rights-holder (the creator unless rented out); CreatorID never changes.
type Space struct {
	ID            uint64 `json:"id"`
	CreatorID     uint64 `json:"creatorID"`
	UserID        uint64 `json:"userID"`
	ParentID      uint64 `json:"parentID"`
	ExpireSeconds uint64 `json:"expireSeconds"`
	Name          string `json:"name"`
}

func (s Space) IsPrimary() bool {
	return s.ParentID == 0
}

// ValidateSpaceName enforces the 3..10 length constraint. The separator
// character is also rejected so composed names stay unambiguous.
func ValidateSpaceName(name string) error {
	if len(name) < SpaceNameMinLen || len(name) > SpaceNameMaxLen {
		return ErrInvalidSpaceName
	}
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			return ErrInvalidSpaceName
		}
	}
	return nil
}

// ComposeSpaceName renders the display form of a child name under its parent.
// The parent name is never duplicated into storage; callers compose on read.
func ComposeSpaceName(child, parent string) string {
	return child + "." + parent
}
