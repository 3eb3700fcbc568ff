package constants

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// DefaultReminderDays are the offsets, in days before expiry, used when a
// guild has not configured its own.
var DefaultReminderDays = []int{3, 2, 1}

const (
	DefaultCurrency = "INR"
	DefaultLocale   = "en-IN"
)

// Table names.
const (
	TableGuildSettings  = "guild_settings"
	TablePanels         = "panels"
	TablePlans          = "plans"
	TablePaymentMethods = "payment_methods"
	TablePlanPricing    = "plan_pricing"
	TableTickets        = "tickets"
	TablePayments       = "payments"
	TableSubscriptions  = "subscriptions"
	TableReminders      = "reminders"
	TableAuditLogs      = "audit_logs"
)
