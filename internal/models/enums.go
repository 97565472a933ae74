package models

type WorkOrderStatus string

const (
	WorkOrderOpen       WorkOrderStatus = "OPEN"
	WorkOrderInProgress WorkOrderStatus = "IN_PROGRESS"
	WorkOrderFinished   WorkOrderStatus = "FINISHED"
	WorkOrderCancelled  WorkOrderStatus = "CANCELLED"
)

// IsClosed reports whether the order reached a terminal status.
func (s WorkOrderStatus) IsClosed() bool {
	return s == WorkOrderFinished || s == WorkOrderCancelled
}

type WipStatus string

const (
	WipActive   WipStatus = "ACTIVE"
	WipHold     WipStatus = "HOLD"
	WipFinished WipStatus = "FINISHED"
	WipScrapped WipStatus = "SCRAPPED"
)

// IsTerminal reports whether the unit left production for good.
func (s WipStatus) IsTerminal() bool {
	return s == WipFinished || s == WipScrapped
}

type ScanType string

const (
	ScanEntry ScanType = "ENTRY"
	ScanExit  ScanType = "EXIT"
	ScanError ScanType = "ERROR"
)

type UserRole string

const (
	RoleOperator   UserRole = "operator"
	RoleSupervisor UserRole = "supervisor"
)
