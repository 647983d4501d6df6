package manifest

import (
	"fmt"
	"time"

	"github.com/dagknows/dkproxyctl/internal/config"
)

const vaultNotes = "HashiCorp vault - defaults to :latest, manual pinning supported"

// timestamp format used for deployed_at/applied_at fields. RFC3339 keeps the
// values sortable and safe to truncate for display.
func now() string {
	return time.Now().Format(time.RFC3339)
}

// Default returns a fresh manifest with the public registry configuration.
func Default() *Manifest {
	return &Manifest{
		SchemaVersion: SchemaVersion,
		DeploymentID:  fmt.Sprintf("dkproxy-%s", time.Now().Format("20060102")),
		ECR: RegistryConfig{
			Registry:        config.PublicRegistryHost,
			RepositoryAlias: config.DefaultRegistryAlias,
			PrivateRegion:   "us-east-1",
		},
		Services:        map[config.Service]ServiceRecord{},
		History:         map[config.Service][]HistoryEntry{},
		CustomOverrides: map[config.Service]Override{},
	}
}

// normalize repairs a loaded manifest so the rest of the code can index maps
// and build image references without nil checks.
func (m *Manifest) normalize() {
	if m.SchemaVersion == "" {
		m.SchemaVersion = SchemaVersion
	}
	if m.ECR.Registry == "" {
		m.ECR.Registry = config.PublicRegistryHost
	}
	if m.ECR.RepositoryAlias == "" {
		m.ECR.RepositoryAlias = config.DefaultRegistryAlias
	}
	if m.ECR.PrivateRegion == "" {
		m.ECR.PrivateRegion = "us-east-1"
	}
	if m.Services == nil {
		m.Services = map[config.Service]ServiceRecord{}
	}
	if m.History == nil {
		m.History = map[config.Service][]HistoryEntry{}
	}
	if m.CustomOverrides == nil {
		m.CustomOverrides = map[config.Service]Override{}
	}
}

// Tracked reports whether any service version has been recorded yet.
func (m *Manifest) Tracked() bool {
	return len(m.Services) > 0
}

// Registry returns the registry URL ECR-hosted images are pulled from.
func (m *Manifest) Registry() string {
	if m.ECR.UsePrivate && m.ECR.PrivateRegistry != "" {
		return m.ECR.PrivateRegistry
	}
	return m.ECR.Registry + "/" + m.ECR.RepositoryAlias
}

// ImageRef builds the full image reference for a service at the given tag.
func (m *Manifest) ImageRef(svc config.Service, tag string) string {
	if hub := svc.DockerHubImage(); hub != "" {
		return hub + ":" + tag
	}
	return fmt.Sprintf("%s/%s:%s", m.Registry(), svc.RepositoryName(), tag)
}

// EffectiveTag returns the tag a service should run: the override tag when
// one is set, otherwise the recorded current tag, otherwise "latest".
func (m *Manifest) EffectiveTag(svc config.Service) string {
	if o, ok := m.CustomOverrides[svc]; ok && o.Tag != "" {
		return o.Tag
	}
	if rec, ok := m.Services[svc]; ok && rec.CurrentTag != "" {
		return rec.CurrentTag
	}
	return "latest"
}

// PreviousTag returns the rollback target for a service: the history entry
// with status "previous", else the second entry. ok is false when the history
// offers no target.
func (m *Manifest) PreviousTag(svc config.Service) (string, bool) {
	hist := m.History[svc]
	for _, e := range hist {
		if e.Status == StatusPrevious {
			return e.Tag, true
		}
	}
	if len(hist) > 1 {
		return hist[1].Tag, true
	}
	return "", false
}

// Override returns the custom override for a service, if any.
func (m *Manifest) Override(svc config.Service) (Override, bool) {
	o, ok := m.CustomOverrides[svc]
	return o, ok
}

// SetOverride pins a service to a tag. The pin survives rollbacks and is
// cleared by the next normal Record.
func (m *Manifest) SetOverride(svc config.Service, tag, reason string) {
	if m.CustomOverrides == nil {
		m.CustomOverrides = map[config.Service]Override{}
	}
	m.CustomOverrides[svc] = Override{
		Tag:       tag,
		Reason:    reason,
		AppliedAt: now(),
	}
}

// Record registers a deployment of svc at tag. The service row is rewritten,
// history shifts (current becomes previous, or rolled-back when rollback is
// set; previous becomes archived), the new entry is inserted at the front and
// the ring is truncated. A normal record clears any custom override; a
// rollback preserves it. Rolling back to a tag already in history moves that
// entry to the front instead of duplicating it.
func (m *Manifest) Record(svc config.Service, tag, digest, by string, rollback bool) {
	ts := now()

	if m.Services == nil {
		m.Services = map[config.Service]ServiceRecord{}
	}
	rec := ServiceRecord{
		CurrentTag:  tag,
		DeployedAt:  ts,
		DeployedBy:  by,
		ImageDigest: digest,
	}
	if svc == config.ServiceVault {
		rec.Notes = vaultNotes
	}
	m.Services[svc] = rec

	if m.History == nil {
		m.History = map[config.Service][]HistoryEntry{}
	}
	hist := m.History[svc]

	demoted := StatusPrevious
	if rollback {
		demoted = StatusRolledBack
	}
	for i := range hist {
		switch hist[i].Status {
		case StatusCurrent:
			hist[i].Status = demoted
		case StatusPrevious:
			hist[i].Status = StatusArchived
		}
	}

	if rollback {
		// The entry being rolled back to moves to the front rather than
		// appearing twice in the ring.
		kept := hist[:0]
		for _, e := range hist {
			if e.Tag != tag {
				kept = append(kept, e)
			}
		}
		hist = kept
	}

	hist = append([]HistoryEntry{{Tag: tag, DeployedAt: ts, Status: StatusCurrent}}, hist...)
	if len(hist) > HistoryLimit {
		hist = hist[:HistoryLimit]
	}
	m.History[svc] = hist

	if !rollback {
		delete(m.CustomOverrides, svc)
	}
}

// RewriteCurrentTag replaces the recorded current tag in place, editing both
// the service row and the matching current history entry without creating a
// new deployment. Used by tag resolution to pin a floating "latest" to the
// semantic tag it actually pulled. Returns false when the service has no
// recorded version.
func (m *Manifest) RewriteCurrentTag(svc config.Service, tag string) bool {
	rec, ok := m.Services[svc]
	if !ok {
		return false
	}
	oldTag := rec.CurrentTag
	rec.CurrentTag = tag
	m.Services[svc] = rec

	hist := m.History[svc]
	for i := range hist {
		if hist[i].Status == StatusCurrent && hist[i].Tag == oldTag {
			hist[i].Tag = tag
			break
		}
	}
	return true
}
