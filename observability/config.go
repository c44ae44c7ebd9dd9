package observability

type Config struct {
	metricsEnabled bool
}
