package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Trade direction of a signal.
const (
	SideLong  = "LONG"
	SideShort = "SHORT"
)

// Signal lifecycle. A signal starts as NEW and moves exactly once to one of the
// terminal statuses; terminal rows are never revisited by the evaluator.
const (
	StatusNew     = "NEW"
	StatusTP      = "TP"
	StatusSL      = "SL"
	StatusAmb     = "AMB"
	StatusExpired = "EXPIRED"
)

// Signal is one trade hypothesis recorded by the scanner and later scored by
// the evaluator against subsequent bars.
type Signal struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	Symbol string `gorm:"type:varchar(20);not null;index" json:"symbol"`
	Side   string `gorm:"type:varchar(5);not null" json:"side"`
	// Timeframes is the joined label list the scanner saw the setup on
	// (e.g. "1h,4h"). Cosmetic: evaluation always uses the configured bar
	// interval, not these labels.
	Timeframes string `gorm:"type:varchar(50);not null" json:"timeframes"`

	Entry      decimal.Decimal `gorm:"type:numeric(30,10);not null" json:"entry"`
	TakeProfit decimal.Decimal `gorm:"column:tp;type:numeric(30,10);not null" json:"tp"`
	StopLoss   decimal.Decimal `gorm:"column:sl;type:numeric(30,10);not null" json:"sl"`
	RiskReward decimal.Decimal `gorm:"column:rr;type:numeric(20,10);not null;default:0" json:"rr"`
	Confidence decimal.Decimal `gorm:"type:numeric(20,10);not null;default:0" json:"confidence"`

	HorizonMinutes int `gorm:"not null" json:"horizon_minutes"`

	Status string `gorm:"type:varchar(10);not null;default:'NEW';index" json:"status"`
	// OutcomeAt is nil exactly while Status is NEW.
	OutcomeAt *time.Time `gorm:"index" json:"outcome_at,omitempty"`

	// Payload carries scanner context (indicator readings etc.) as raw JSON.
	Payload datatypes.JSON `json:"payload,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Signal) TableName() string {
	return "signals"
}

// Terminal reports whether the signal has reached a final status.
func (s Signal) Terminal() bool {
	return s.Status != StatusNew
}
