package domain

const (
	// Template keys
	KeyResources = "resources"
	KeyName      = "name"
	KeyType      = "type"
	KeyDependsOn = "dependsOn"

	// Resource keys
	KeyProperties = "properties"
	KeySKU        = "sku"
	KeyTier       = "tier"
	KeyBasePolicy = "basePolicy"
	KeyID         = "id"

	// Firewall policy keys
	KeyThreatIntelMode = "threatIntelMode"

	// Rule collection group keys
	KeyPriority           = "priority"
	KeyRuleCollections    = "ruleCollections"
	KeyRuleCollectionType = "ruleCollectionType"
	KeyAction             = "action"
	KeyRules              = "rules"
	KeyRuleType           = "ruleType"

	// Rule keys that commonly reference IP groups
	KeySourceIPGroups      = "sourceIpGroups"
	KeyDestinationIPGroups = "destinationIpGroups"
)
