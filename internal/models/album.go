package models

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/desertthunder/albumsync/internal/shared"
)

// Album is a remote album as returned by the photo service.
type Album struct {
	ID             string
	Title          string
	Description    string
	PrimaryAssetID string
	AssetCount     int
}

// Asset is a remote photo.
//
// Description embeds "#<hash>" for files uploaded by albumsync.
type Asset struct {
	ID          string
	Title       string
	Tags        string
	Description string
	Permissions Permissions
}

// Visibility bits of the octal permission argument.
const (
	PermPublic = 4
	PermFriend = 2
	PermFamily = 1
)

// Interaction levels applied alongside visibility.
const (
	PermNobody = iota
	PermFriendsAndFamily
	PermContacts
	PermEverybody
)

// Permissions holds visibility flags and who may comment on or annotate an asset.
type Permissions struct {
	IsPublic    bool
	IsFriend    bool
	IsFamily    bool
	PermComment int
	PermAddMeta int
}

// NewPermissions builds [Permissions] from the octal visibility bits with default interaction levels.
func NewPermissions(bits int) Permissions {
	return Permissions{
		IsPublic:    bits&PermPublic != 0,
		IsFriend:    bits&PermFriend != 0,
		IsFamily:    bits&PermFamily != 0,
		PermComment: PermEverybody,
		PermAddMeta: PermContacts,
	}
}

// VisibilityPermissions returns public or fully private permissions for uploads.
func VisibilityPermissions(public bool) Permissions {
	if public {
		return NewPermissions(PermPublic)
	}
	return NewPermissions(0)
}

// ParsePermissions parses a single octal digit such as "4" (public) or "3" (friends and family).
func ParsePermissions(s string) (Permissions, error) {
	s = strings.TrimSpace(s)
	bits, err := strconv.ParseUint(s, 8, 8)
	if err != nil || bits > 7 {
		return Permissions{}, fmt.Errorf("%w: permissions must be an octal digit 0-7, got %q", shared.ErrInvalidArgument, s)
	}
	return NewPermissions(int(bits)), nil
}

// Bits returns the octal visibility value.
func (p Permissions) Bits() int {
	bits := 0
	if p.IsPublic {
		bits |= PermPublic
	}
	if p.IsFriend {
		bits |= PermFriend
	}
	if p.IsFamily {
		bits |= PermFamily
	}
	return bits
}

func (p Permissions) String() string {
	if p.Bits() == 0 {
		return "private"
	}
	var parts []string
	if p.IsPublic {
		parts = append(parts, "public")
	}
	if p.IsFriend {
		parts = append(parts, "friends")
	}
	if p.IsFamily {
		parts = append(parts, "family")
	}
	return strings.Join(parts, "+")
}

// UserInfo describes the account that owns the albums.
type UserInfo struct {
	ID         string
	Username   string
	RealName   string
	PhotosURL  string
	AssetCount int
}

// UploadStatus reports the remaining upload quota in bytes.
type UploadStatus struct {
	BandwidthMax       int64
	BandwidthUsed      int64
	BandwidthRemaining int64
	FileSizeMax        int64
}

// UploadRequest describes one file upload.
type UploadRequest struct {
	FileName    string
	Content     io.Reader
	Size        int64
	Title       string
	Tags        string
	Description string
	Permissions Permissions
}
