// Package models holds the gorm persistence models. They are the
// anti-corruption layer between the domain and the database.
package models

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&GuildSettingsModel{},
		&PanelModel{},
		&PlanModel{},
		&PaymentMethodModel{},
		&PlanPricingModel{},
		&TicketModel{},
		&PaymentModel{},
		&SubscriptionModel{},
		&ReminderModel{},
		&AuditLogModel{},
	}
}
