package models

import (
	"time"

	"github.com/lib/pq"
)

type Account struct {
	ID              uint64        `json:"id" gorm:"primaryKey"`
	Owner           string        `json:"owner" gorm:"type:text;uniqueIndex:uniq_accounts_owner,where:owner <> ''"`
	AvatarURI       string        `json:"avatarURI" gorm:"type:text"`
	PostIDs         pq.Int64Array `json:"postIDs" gorm:"type:bigint[]"`
	CommentIDs      pq.Int64Array `json:"commentIDs" gorm:"type:bigint[]"`
	LikedPostIDs    pq.Int64Array `json:"likedPostIDs" gorm:"type:bigint[]"`
	CreatedSpaceIDs pq.Int64Array `json:"createdSpaceIDs" gorm:"type:bigint[]"`
	RentedSpaceIDs  pq.Int64Array `json:"rentedSpaceIDs" gorm:"type:bigint[]"`
	CDate           time.Time     `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Space struct {
	ID            uint64    `json:"id" gorm:"primaryKey"`
	CreatorID     uint64    `json:"creatorID" gorm:"index"`
	UserID        uint64    `json:"userID" gorm:"index"`
	ParentID      uint64    `json:"parentID" gorm:"uniqueIndex:uniq_spaces_scope_name,priority:1"`
	ExpireSeconds uint64    `json:"expireSeconds"`
	Name          string    `json:"name" gorm:"type:text;uniqueIndex:uniq_spaces_scope_name,priority:2"`
	CDate         time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Post struct {
	ID          uint64    `json:"id" gorm:"primaryKey"`
	CreatorID   uint64    `json:"creatorID" gorm:"index"`
	Timestamp   int64     `json:"timestamp"`
	Deleted     bool      `json:"deleted" gorm:"type:boolean;not null;default:false;index"`
	MetadataURI string    `json:"metadataURI" gorm:"type:text"`
	CDate       time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Comment struct {
	ID        uint64    `json:"id" gorm:"primaryKey"`
	CreatorID uint64    `json:"creatorID" gorm:"index"`
	Timestamp int64     `json:"timestamp"`
	PostID    uint64    `json:"postID" gorm:"index"`
	Deleted   bool      `json:"deleted" gorm:"type:boolean;not null;default:false"`
	Text      string    `json:"text" gorm:"type:text"`
	CDate     time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Like struct {
	ID      int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	PostID  uint64    `json:"postID" gorm:"uniqueIndex:uniq_likes,priority:1;index"`
	LikerID uint64    `json:"likerID" gorm:"uniqueIndex:uniq_likes,priority:2"`
	CDate   time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Approval struct {
	SpaceID   uint64    `json:"spaceID" gorm:"primaryKey"`
	SpenderID uint64    `json:"spenderID" gorm:"not null"`
	CDate     time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Setting struct {
	Key   string `json:"key" gorm:"primaryKey;type:text"`
	Value string `json:"value" gorm:"type:text"`
}

type Sequence struct {
	Kind  string `json:"kind" gorm:"primaryKey;type:text"`
	Value uint64 `json:"value" gorm:"not null;default:0"`
}

type LedgerEntry struct {
	ID      uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Address string    `json:"address" gorm:"type:text;index"`
	From    string    `json:"from" gorm:"column:from_address;type:text"`
	Amount  uint64    `json:"amount" gorm:"not null"`
	Memo    string    `json:"memo" gorm:"type:text"`
	At      int64     `json:"at"`
	CDate   time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
