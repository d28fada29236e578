package model

// All returns every model managed by the migrator, in dependency order.
func All() []any {
	return []any{
		&UserModel{},
		&GroupModel{},
		&GroupMemberModel{},
		&CategoryModel{},
		&PaymentMethodModel{},
		&BudgetModel{},
	}
}
