package dialect

// Capabilities is one row of the backend capability table. The foreign-key
// engine consults it instead of switching on the dialect name.
type Capabilities struct {
	// ManagesOwnFKIndex is true when the storage engine creates and drops an
	// index for every foreign key by itself (InnoDB). The engine then never
	// plans an auto-index and never cleans one up.
	ManagesOwnFKIndex bool

	// TransactionalDDL is true when DDL can run inside a transaction.
	TransactionalDDL bool

	// AlterConstraints is true when foreign keys can be added to and dropped
	// from an existing table.
	AlterConstraints bool

	// RenameIndex is true when an index can be renamed in place. Otherwise it
	// is dropped and recreated.
	RenameIndex bool

	// DropIndexIfExists is true when DROP INDEX accepts IF EXISTS.
	DropIndexIfExists bool

	// MaxIdentifierLength is the longest identifier the backend accepts.
	// 0 means no practical limit.
	MaxIdentifierLength int
}

var capabilityTable = map[string]Capabilities{
	"postgres": {
		TransactionalDDL:    true,
		AlterConstraints:    true,
		RenameIndex:         true,
		DropIndexIfExists:   true,
		MaxIdentifierLength: 63,
	},
	"sqlite": {
		TransactionalDDL:  true,
		DropIndexIfExists: true,
	},
	"mysql": {
		ManagesOwnFKIndex:   true,
		AlterConstraints:    true,
		RenameIndex:         true,
		MaxIdentifierLength: 64,
	},
}

// CapabilitiesFor returns the capability row for a dialect name or alias.
func CapabilitiesFor(name string) (Capabilities, bool) {
	c, ok := capabilityTable[canonical(name)]
	return c, ok
}
