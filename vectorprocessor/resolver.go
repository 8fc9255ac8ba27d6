package vectorprocessor

// DatasetIndex is the subset of a dataset's stored configuration relevant
// to backend resolution: its own explicit backend choice, if it has one.
type DatasetIndex struct {
	DatasetID string
	Backend   string // empty if the dataset never pinned one
}

// BackendResolver picks the backend tag and connection config for a
// dataset, in the same order a multi-tenant vector-store factory typically
// does: the dataset's own stored choice first, then a tenant-level
// whitelist override, then the deployment-wide default.
type BackendResolver struct {
	defaultBackend string
	defaultConfigs map[string]BackendConfig
	tenantOverride map[string]string // tenantID -> backend
	datasets       map[string]DatasetIndex
}

// NewBackendResolver builds a resolver with the given deployment-wide
// default backend and per-backend connection configs.
func NewBackendResolver(defaultBackend string, defaultConfigs map[string]BackendConfig) *BackendResolver {
	return &BackendResolver{
		defaultBackend: defaultBackend,
		defaultConfigs: defaultConfigs,
		tenantOverride: make(map[string]string),
		datasets:       make(map[string]DatasetIndex),
	}
}

// IndexDataset records a dataset's own stored backend choice, if any. A
// dataset created under a since-changed default keeps working against the
// backend it was actually written to.
func (r *BackendResolver) IndexDataset(idx DatasetIndex) {
	r.datasets[idx.DatasetID] = idx
}

// SetTenantOverride pins a tenant to a non-default backend for every
// dataset that doesn't have its own explicit choice, e.g. to migrate one
// customer onto a new backend ahead of the deployment-wide default.
func (r *BackendResolver) SetTenantOverride(tenantID, backend string) {
	r.tenantOverride[tenantID] = backend
}

// Resolve returns the backend tag and connection config to use for
// (tenantID, datasetID), in order: the dataset's own stored choice, then
// the tenant's whitelist override, then the deployment default.
func (r *BackendResolver) Resolve(tenantID, datasetID string) (string, BackendConfig) {
	backend := r.defaultBackend
	if override, ok := r.tenantOverride[tenantID]; ok {
		backend = override
	}
	if idx, ok := r.datasets[datasetID]; ok && idx.Backend != "" {
		backend = idx.Backend
	}

	cfg := r.defaultConfigs[backend]
	cfg.DatasetID = datasetID
	if cfg.CollectionName == "" {
		cfg.CollectionName = "dataset_" + datasetID
	}
	return backend, cfg
}
