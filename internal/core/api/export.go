package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/logisq/xyronq/internal/codegen"
	"github.com/logisq/xyronq/internal/types"
)

type domainHash struct {
	Hash    string `json:"hash"`
	Version string `json:"version"`
}

func (s *Service) handleExportHashes(w http.ResponseWriter, r *http.Request) {
	domains, err := s.store.ListDomainGraphs(r.Context())
	if err != nil {
		s.logger.Error("failed to compute hashes", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to compute hashes")
		return
	}

	hashes := make(map[string]domainHash, len(domains))
	for _, domain := range domains {
		hashes[domain.Name] = domainHash{
			Hash:    codegen.DomainHash(domain),
			Version: domain.Version,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"hashes":      hashes,
		"generatedAt": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Service) handleExportAll(w http.ResponseWriter, r *http.Request) {
	domains, err := s.store.ListDomainGraphs(r.Context())
	if err != nil {
		s.logger.Error("failed to generate contracts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate C# contracts")
		return
	}

	out := codegen.GenerateAll(domains, time.Now().UTC())
	s.logWarnings(out.Warnings)

	archive, err := codegen.Bundle("LogisQ.Contracts.Decisions", out.Files)
	if err != nil {
		s.logger.Error("failed to bundle contracts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate C# contracts")
		return
	}
	writeZip(w, "LogisQ.Contracts.Decisions.zip", archive)
}

func (s *Service) handleExportDomain(w http.ResponseWriter, r *http.Request) {
	id := types.DomainID(r.PathValue("domainId"))
	domain, err := s.store.GetDomainGraph(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "Domain not found", "Failed to generate C# contracts", http.StatusInternalServerError)
		return
	}

	out := codegen.Generate(domain, time.Now().UTC())
	s.logWarnings(out.Warnings)

	ns := bundleSegment(domain.Name)
	archive, err := codegen.Bundle("LogisQ.Contracts."+ns, out.Files)
	if err != nil {
		s.logger.Error("failed to bundle contracts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate C# contracts")
		return
	}
	writeZip(w, fmt.Sprintf("LogisQ.Contracts.%s.zip", ns), archive)
}

func (s *Service) logWarnings(warnings []string) {
	for _, warning := range warnings {
		s.logger.Warn("codegen warning", zap.String("warning", warning))
	}
}

// bundleSegment names the per-domain archive. Unlike the namespaces
// inside the generated files it keeps the domain name's casing and
// only drops characters outside [A-Za-z0-9].
func bundleSegment(name string) string {
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func writeZip(w http.ResponseWriter, filename string, archive []byte) {
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(archive)
}
