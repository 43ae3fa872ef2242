package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// AppList stores the mini-app names a user may open as a JSON array.
type AppList []string

// Value implements driver.Valuer for database serialization.
func (a AppList) Value() (driver.Value, error) {
	cleaned := a.Clean()
	data, errMarshal := json.Marshal([]string(cleaned))
	if errMarshal != nil {
		return nil, fmt.Errorf("app list marshal: %w", errMarshal)
	}
	return data, nil
}

// Scan implements sql.Scanner for database deserialization.
func (a *AppList) Scan(value any) error {
	if a == nil {
		return fmt.Errorf("app list scan: nil receiver")
	}
	if value == nil {
		*a = AppList{}
		return nil
	}
	switch typed := value.(type) {
	case []byte:
		return parseAppListFromBytes(a, typed)
	case string:
		return parseAppListFromBytes(a, []byte(typed))
	default:
		return fmt.Errorf("app list scan: unsupported type %T", value)
	}
}

func parseAppListFromBytes(target *AppList, data []byte) error {
	if len(data) == 0 {
		*target = AppList{}
		return nil
	}
	var list []string
	if errList := json.Unmarshal(data, &list); errList == nil {
		*target = AppList(list).Clean()
		return nil
	}
	var single string
	if errSingle := json.Unmarshal(data, &single); errSingle == nil {
		*target = AppList{single}.Clean()
		return nil
	}
	return fmt.Errorf("app list scan: invalid json")
}

// Clean normalizes app names by trimming, lowercasing, and de-duplicating.
func (a AppList) Clean() AppList {
	if len(a) == 0 {
		return AppList{}
	}
	seen := make(map[string]struct{}, len(a))
	cleaned := make(AppList, 0, len(a))
	for _, app := range a {
		name := strings.ToLower(strings.TrimSpace(app))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		cleaned = append(cleaned, name)
	}
	return cleaned
}

// Contains reports whether the list includes the given app name.
func (a AppList) Contains(app string) bool {
	name := strings.ToLower(strings.TrimSpace(app))
	for _, candidate := range a {
		if candidate == name {
			return true
		}
	}
	return false
}

// User represents a portal account stored in the identity database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username string `gorm:"type:text;not null;uniqueIndex"` // Unique login name.
	Password string `gorm:"type:text;not null"`             // Hashed password (legacy rows may hold plaintext).
	Name     string `gorm:"type:text"`                      // Display name.
	Sector   string `gorm:"type:text"`                      // Business sector label.

	IsAdmin  bool `gorm:"not null;default:false"` // Exempt from business-hours gating.
	IsActive bool `gorm:"not null;default:true"`  // Whether the account can sign in.

	Apps AppList `gorm:"type:jsonb;not null;default:'[]'"` // Mini-apps the user may open.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
