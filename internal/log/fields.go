package log

// Common field names for structured logging.
const (
	FieldComponent    = "component"
	FieldError        = "error"
	FieldOperation    = "operation"
	FieldUserID       = "user_id"
	FieldCollection   = "collection"
	FieldDocumentID   = "document_id"
	FieldGoalID       = "goal_id"
	FieldBillID       = "bill_id"
	FieldMonthYear    = "month_year"
	FieldAmountCents  = "amount_cents"
	FieldCategory     = "category"
	FieldActivityType = "activity_type"
	FieldCount        = "count"
)

// Components defines standard component names.
const (
	ComponentEngine   = "engine"
	ComponentLedger   = "ledger"
	ComponentBudget   = "budget"
	ComponentGoal     = "goal"
	ComponentBill     = "bill"
	ComponentActivity = "activity"
	ComponentStore    = "store"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentCLI      = "cli"
)

// Operations defines standard operation names.
const (
	OpCreate     = "create"
	OpUpdate     = "update"
	OpDelete     = "delete"
	OpList       = "list"
	OpSave       = "save"
	OpContribute = "contribute"
	OpMarkPaid   = "mark_paid"
	OpScan       = "scan_overdue"
	OpRecord     = "record"
)
