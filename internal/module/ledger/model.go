package ledger

// Feature is a named billable capability with its own credit counter.
type Feature string

const (
	FeatureImage     Feature = "image"
	FeatureDoctor    Feature = "doctor"
	FeatureMarketing Feature = "marketing"
	FeatureQuote     Feature = "quote"
)

// Valid reports whether the feature maps to a known credit column.
func (f Feature) Valid() bool {
	switch f {
	case FeatureImage, FeatureDoctor, FeatureMarketing, FeatureQuote:
		return true
	default:
		return false
	}
}

// Column returns the users-table column holding the feature's balance.
// Only valid features map to a column; callers must check Valid first.
func (f Feature) Column() string {
	return string(f)
}

// User is a prepaid account keyed by email. Accounts are provisioned
// externally; this service only reads them and decrements balances.
type User struct {
	Email     string `gorm:"primaryKey;column:email" json:"email"`
	Image     int64  `gorm:"column:image;not null;default:0" json:"image"`
	Doctor    int64  `gorm:"column:doctor;not null;default:0" json:"doctor"`
	Marketing int64  `gorm:"column:marketing;not null;default:0" json:"marketing"`
	Quote     int64  `gorm:"column:quote;not null;default:0" json:"quote"`
}

// TableName returns the table name for User.
func (User) TableName() string {
	return "users"
}

// Balance returns the remaining credits for a feature. An unknown
// feature reads as zero, never an error.
func (u *User) Balance(feature Feature) int64 {
	switch feature {
	case FeatureImage:
		return u.Image
	case FeatureDoctor:
		return u.Doctor
	case FeatureMarketing:
		return u.Marketing
	case FeatureQuote:
		return u.Quote
	default:
		return 0
	}
}

// Record returns the user as a plain map for JSON responses. This is the
// single serialization boundary for store-read account records.
func (u *User) Record() map[string]any {
	return map[string]any{
		"email":     u.Email,
		"image":     u.Image,
		"doctor":    u.Doctor,
		"marketing": u.Marketing,
		"quote":     u.Quote,
	}
}
