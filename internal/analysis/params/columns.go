package params

import "ta-kernels/internal/models"

// Role is the logical input a kernel reads from the bar frame.
type Role string

const (
	RoleClose  Role = "close_col"
	RoleHigh   Role = "high_col"
	RoleLow    Role = "low_col"
	RoleVolume Role = "volume_col"
)

// Columns maps roles to frame column names.
type Columns struct {
	Close  string
	High   string
	Low    string
	Volume string
}

// DefaultColumns returns the standard column names.
func DefaultColumns() Columns {
	return Columns{
		Close:  models.ColClose,
		High:   models.ColHigh,
		Low:    models.ColLow,
		Volume: models.ColVolume,
	}
}

// ResolveColumns overlays the role map on the defaults. Unknown roles and empty names are ignored.
func ResolveColumns(in map[string]string) Columns {
	c := DefaultColumns()
	for role, name := range in {
		if name == "" {
			continue
		}
		switch Role(role) {
		case RoleClose:
			c.Close = name
		case RoleHigh:
			c.High = name
		case RoleLow:
			c.Low = name
		case RoleVolume:
			c.Volume = name
		}
	}
	return c
}

// Name returns the column configured for role.
func (c Columns) Name(role Role) string {
	switch role {
	case RoleClose:
		return c.Close
	case RoleHigh:
		return c.High
	case RoleLow:
		return c.Low
	case RoleVolume:
		return c.Volume
	}
	return ""
}
