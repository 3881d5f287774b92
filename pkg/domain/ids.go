package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "coinquest/pkg/domain-errors"
)

// Typed identifiers. Each wraps a UUID so that a category ID can never be
// passed where a merchant ID is expected.
type (
	UserID        uuid.UUID
	SessionID     uuid.UUID
	CategoryID    uuid.UUID
	MerchantID    uuid.UUID
	TransactionID uuid.UUID
	BudgetID      uuid.UUID
	SystemLogID   uuid.UUID
)

func parseUUID(kind, s string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	return u, nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID("user id", s)
	return UserID(u), err
}

func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID("session id", s)
	return SessionID(u), err
}

func ParseCategoryID(s string) (CategoryID, error) {
	u, err := parseUUID("category id", s)
	return CategoryID(u), err
}

func ParseMerchantID(s string) (MerchantID, error) {
	u, err := parseUUID("merchant id", s)
	return MerchantID(u), err
}

func ParseTransactionID(s string) (TransactionID, error) {
	u, err := parseUUID("transaction id", s)
	return TransactionID(u), err
}

func ParseBudgetID(s string) (BudgetID, error) {
	u, err := parseUUID("budget id", s)
	return BudgetID(u), err
}

func (id UserID) String() string        { return uuid.UUID(id).String() }
func (id SessionID) String() string     { return uuid.UUID(id).String() }
func (id CategoryID) String() string    { return uuid.UUID(id).String() }
func (id MerchantID) String() string    { return uuid.UUID(id).String() }
func (id TransactionID) String() string { return uuid.UUID(id).String() }
func (id BudgetID) String() string      { return uuid.UUID(id).String() }
func (id SystemLogID) String() string   { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id CategoryID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id MerchantID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// Text marshalling keeps IDs as canonical strings in JSON payloads.

func (id UserID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id SessionID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id CategoryID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id MerchantID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id TransactionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id BudgetID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id SystemLogID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
