package domain

// Role represents user role in the system
type Role string

const (
	RoleAnggota       Role = "ANGGOTA"
	RoleBendahara     Role = "BENDAHARA"
	RoleAdministrator Role = "ADMINISTRATOR"
)

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAnggota, RoleBendahara, RoleAdministrator:
		return true
	}
	return false
}

// BillStatus is the lifecycle state of a bill
type BillStatus string

const (
	BillStatusPending     BillStatus = "PENDING"
	BillStatusClaimedPaid BillStatus = "CLAIMED_PAID"
	BillStatusPaid        BillStatus = "PAID"
	// BillStatusOverdue is declared in the schema but nothing produces it yet.
	BillStatusOverdue BillStatus = "OVERDUE"
)

// IsValid reports whether s is one of the known bill statuses
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusPending, BillStatusClaimedPaid, BillStatusPaid, BillStatusOverdue:
		return true
	}
	return false
}

// CanTransitionTo reports whether a bill in status s may move to next.
//
//	PENDING      -> CLAIMED_PAID  (member claims)
//	PENDING      -> PAID          (treasurer verifies cash received directly)
//	CLAIMED_PAID -> PAID          (treasurer verifies a claim)
//	PAID         -> CLAIMED_PAID  (treasurer unverifies)
//
// OVERDUE leaves like PENDING. Nothing ever returns to PENDING or OVERDUE.
func (s BillStatus) CanTransitionTo(next BillStatus) bool {
	switch s {
	case BillStatusPending, BillStatusOverdue:
		return next == BillStatusClaimedPaid || next == BillStatusPaid
	case BillStatusClaimedPaid:
		return next == BillStatusPaid
	case BillStatusPaid:
		return next == BillStatusClaimedPaid
	}
	return false
}

// TransactionType is the direction of a cash movement
type TransactionType string

const (
	TransactionMasuk  TransactionType = "MASUK"
	TransactionKeluar TransactionType = "KELUAR"
)

// IsValid reports whether t is MASUK or KELUAR
func (t TransactionType) IsValid() bool {
	return t == TransactionMasuk || t == TransactionKeluar
}

// Principal is the authenticated caller of an operation
type Principal struct {
	UserID string
	Name   string
	Email  string
	Role   Role
}
