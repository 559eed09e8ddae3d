package domain

type EventKind string

const (
	EventMeeting       EventKind = "meeting"
	EventCall          EventKind = "call"
	EventReminder      EventKind = "reminder"
	EventDeadline      EventKind = "deadline"
	EventTaskShadow    EventKind = "task-shadow"
	EventInvoiceShadow EventKind = "invoice-shadow"
)

// ValidEventKinds is the canonical set of accepted event kind strings.
var ValidEventKinds = map[EventKind]bool{
	EventMeeting: true, EventCall: true, EventReminder: true,
	EventDeadline: true, EventTaskShadow: true, EventInvoiceShadow: true,
}

type EventSource string

const (
	SourceNative  EventSource = "native"
	SourceICS     EventSource = "ics"
	SourceBooking EventSource = "booking"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

// ValidTaskStatuses is the canonical set of accepted task status strings.
var ValidTaskStatuses = map[TaskStatus]bool{
	TaskTodo: true, TaskInProgress: true, TaskCompleted: true, TaskCancelled: true,
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

type ParticipantRole string

const (
	RoleOwner  ParticipantRole = "owner"
	RoleAdmin  ParticipantRole = "admin"
	RoleMember ParticipantRole = "member"
)

type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSent      InvoiceStatus = "sent"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

type TimelineKind string

const (
	TimelineEvent    TimelineKind = "event"
	TimelineTask     TimelineKind = "task"
	TimelineInvoice  TimelineKind = "invoice"
	TimelineContract TimelineKind = "contract"
)
