package logging

const (
	NameAPIServer      = "APIServer"
	NameEventLog       = "EventLog"
	NameMetricsHandler = "MetricsHandler"
	NameMigrations     = "Migrations"
	NameProber         = "Prober"
	NameRegistry       = "Registry"
	NameRegistryNode   = "RegistryNode"
	NameStakingGateway = "StakingGateway"

	NameBadgerDBLog       = "BadgerDBLog"
	NameBadgerDBReporting = "BadgerDBReporting"
	NamePebbleDBLog       = "PebbleDBLog"
)
