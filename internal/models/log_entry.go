package models

// Log levels written alongside dual writes.
const (
	LogLevelInfo  = "info"
	LogLevelError = "error"
)

// LogEntry is an audit line written to both stores at write time. The two
// copies are never compared.
type LogEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	Level     string    `json:"level" gorm:"type:varchar(16);not null"`
	Timestamp Timestamp `json:"timestamp" gorm:"not null"`
}
