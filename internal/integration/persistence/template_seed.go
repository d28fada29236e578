package persistence

import (
	"github.com/google/uuid"

	"github.com/household-ledger/backend/internal/domain/entity"
)

type seedNode struct {
	name     string
	code     string
	icon     string
	color    string
	children []seedNode
}

var defaultCategories = []seedNode{
	{name: "Food", code: "FOOD", icon: "🍚", color: "#FF6B6B", children: []seedNode{
		{name: "Groceries", code: "FOOD_GROCERIES", icon: "🛒"},
		{name: "Eating Out", code: "FOOD_OUT", icon: "🍽️"},
		{name: "Cafe & Snacks", code: "FOOD_CAFE", icon: "☕"},
	}},
	{name: "Housing", code: "HOUSING", icon: "🏠", color: "#4ECDC4", children: []seedNode{
		{name: "Rent", code: "HOUSING_RENT", icon: "🔑"},
		{name: "Utilities", code: "HOUSING_UTILITIES", icon: "💡"},
		{name: "Maintenance Fee", code: "HOUSING_MAINTENANCE", icon: "🧾"},
	}},
	{name: "Transport", code: "TRANSPORT", icon: "🚌", color: "#45B7D1", children: []seedNode{
		{name: "Public Transit", code: "TRANSPORT_PUBLIC", icon: "🚇"},
		{name: "Fuel", code: "TRANSPORT_FUEL", icon: "⛽"},
		{name: "Taxi", code: "TRANSPORT_TAXI", icon: "🚕"},
	}},
	{name: "Living", code: "LIVING", icon: "🧴", color: "#96CEB4", children: []seedNode{
		{name: "Household Goods", code: "LIVING_GOODS", icon: "🧻"},
		{name: "Communication", code: "LIVING_PHONE", icon: "📱"},
	}},
	{name: "Health", code: "HEALTH", icon: "💊", color: "#FECA57", children: []seedNode{
		{name: "Hospital", code: "HEALTH_HOSPITAL", icon: "🏥"},
		{name: "Pharmacy", code: "HEALTH_PHARMACY", icon: "💊"},
	}},
	{name: "Leisure", code: "LEISURE", icon: "🎬", color: "#A55EEA", children: []seedNode{
		{name: "Culture", code: "LEISURE_CULTURE", icon: "🎭"},
		{name: "Travel", code: "LEISURE_TRAVEL", icon: "✈️"},
	}},
	{name: "Education", code: "EDUCATION", icon: "📚", color: "#FF9FF3"},
	{name: "Income", code: "INCOME", icon: "💰", color: "#26DE81", children: []seedNode{
		{name: "Salary", code: "INCOME_SALARY", icon: "💼"},
		{name: "Side Income", code: "INCOME_SIDE", icon: "🪙"},
	}},
	{name: "Other", code: "OTHER", icon: "📦", color: "#90A4AE"},
}

var defaultPaymentMethods = []seedNode{
	{name: "Cash", code: "CASH", icon: "💵", color: "#26DE81"},
	{name: "Card", code: "CARD", icon: "💳", color: "#45B7D1", children: []seedNode{
		{name: "Credit Card", code: "CARD_CREDIT", icon: "💳"},
		{name: "Debit Card", code: "CARD_DEBIT", icon: "💳"},
	}},
	{name: "Bank Transfer", code: "TRANSFER", icon: "🏦", color: "#4ECDC4"},
	{name: "Mobile Pay", code: "MOBILE", icon: "📱", color: "#FFA726", children: []seedNode{
		{name: "Kakao Pay", code: "MOBILE_KAKAOPAY", icon: "📱"},
		{name: "Naver Pay", code: "MOBILE_NAVERPAY", icon: "📱"},
		{name: "Toss", code: "MOBILE_TOSS", icon: "📱"},
	}},
}

// DefaultTemplates returns the system template forest for each taxonomy kind.
// Ids are freshly generated on every call; codes identify the nodes.
func DefaultTemplates() map[entity.NodeKind][]*entity.TaxonomyNode {
	return map[entity.NodeKind][]*entity.TaxonomyNode{
		entity.NodeKindCategory:      flattenSeed(entity.NodeKindCategory, defaultCategories),
		entity.NodeKindPaymentMethod: flattenSeed(entity.NodeKindPaymentMethod, defaultPaymentMethods),
	}
}

func flattenSeed(kind entity.NodeKind, roots []seedNode) []*entity.TaxonomyNode {
	var nodes []*entity.TaxonomyNode
	for i, root := range roots {
		parent := entity.NewTemplateNode(kind, root.name, root.code, nil, root.icon, root.color, i+1)
		nodes = append(nodes, parent)

		parentID := parent.ID
		for j, child := range root.children {
			color := child.color
			if color == "" {
				color = root.color
			}
			nodes = append(nodes, entity.NewTemplateNode(kind, child.name, child.code, uuidPtr(parentID), child.icon, color, j+1))
		}
	}
	return nodes
}

func uuidPtr(id uuid.UUID) *uuid.UUID {
	return &id
}
