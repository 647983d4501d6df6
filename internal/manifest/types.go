// Package manifest implements the version manifest: the persisted document
// tracking per-service deployed tags, bounded deployment history, and custom
// overrides. All mutation happens in memory; the Store handles persistence
// with backup-before-write.
package manifest

import (
	"github.com/dagknows/dkproxyctl/internal/config"
)

// SchemaVersion is written into every manifest this tool creates.
const SchemaVersion = "1.0"

// HistoryLimit bounds the per-service history ring.
const HistoryLimit = 5

// History entry statuses.
const (
	StatusCurrent    = "current"
	StatusPrevious   = "previous"
	StatusRolledBack = "rolled-back"
	StatusArchived   = "archived"
)

// Manifest is the version manifest document. Field order matters: it is the
// order keys appear in the YAML file operators read and edit.
type Manifest struct {
	SchemaVersion   string                            `yaml:"schema_version"`
	DeploymentID    string                            `yaml:"deployment_id"`
	CustomerID      string                            `yaml:"customer_id"`
	ProxyLocation   string                            `yaml:"proxy_location"`
	ECR             RegistryConfig                    `yaml:"ecr"`
	Services        map[config.Service]ServiceRecord  `yaml:"services"`
	History         map[config.Service][]HistoryEntry `yaml:"history"`
	CustomOverrides map[config.Service]Override       `yaml:"custom_overrides"`
}

// RegistryConfig selects where ECR-hosted images are pulled from. The public
// registry is the default; deployments behind restrictive networks mirror the
// images into a private ECR and flip use_private.
type RegistryConfig struct {
	Registry        string `yaml:"registry"`
	RepositoryAlias string `yaml:"repository_alias"`
	UsePrivate      bool   `yaml:"use_private"`
	PrivateRegistry string `yaml:"private_registry"`
	PrivateRegion   string `yaml:"private_region"`
}

// ServiceRecord is the authoritative "what is deployed" row for one service.
type ServiceRecord struct {
	CurrentTag  string `yaml:"current_tag"`
	DeployedAt  string `yaml:"deployed_at"`
	DeployedBy  string `yaml:"deployed_by"`
	ImageDigest string `yaml:"image_digest"`
	Notes       string `yaml:"notes,omitempty"`
}

// HistoryEntry is one row of a service's bounded history, most recent first.
type HistoryEntry struct {
	Tag        string `yaml:"tag"`
	DeployedAt string `yaml:"deployed_at"`
	Status     string `yaml:"status"`
}

// Override pins a service to a specific tag until the next normal deployment
// clears it. Rollbacks preserve overrides.
type Override struct {
	Tag       string `yaml:"tag"`
	Reason    string `yaml:"reason"`
	AppliedAt string `yaml:"applied_at"`
}
