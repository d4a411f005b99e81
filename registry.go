// Copyright 2025 Contriboss
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pubgrub

import (
	"encoding/json"
	"io"
	"os"
	"slices"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// registryDocument is the on-disk JSON shape a RegistrySource loads:
//
//	{
//	  "packages": {
//	    "foo": {
//	      "1.0.0": {"dependencies": {"bar": ">=1.0.0, <2.0.0"}},
//	      "1.1.0": {"dependencies": {}}
//	    }
//	  }
//	}
type registryDocument struct {
	Packages map[string]map[string]registryEntry `json:"packages"`
}

type registryEntry struct {
	Dependencies map[string]string `json:"dependencies"`
}

// registryVersion is a package@version pair parsed once at load time, paired
// with the dependency terms resolved from its version-range strings.
type registryVersion struct {
	version Version
	deps    []Term
}

// RegistrySource loads a fixed package registry from a JSON document and
// serves it as a Source. Unlike InMemorySource (built programmatically by
// callers), RegistrySource is meant to be pointed at a file on disk or an
// io.Reader carrying a registry snapshot, which is the shape a real package
// index (npm, crates.io, rubygems) takes once fetched and cached locally.
//
// Each RegistrySource is stamped with a session id, useful for correlating
// the resolution's structured log lines back to a particular load of the
// registry when several are in flight (e.g. a long-lived resolver process
// serving concurrent requests against different registry snapshots).
type RegistrySource struct {
	SessionID uuid.UUID

	packages map[Name]map[Version]registryVersion
}

// LoadRegistryFile reads and parses a registry document from path.
func LoadRegistryFile(path string) (*RegistrySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening registry file %s", path)
	}
	defer f.Close()
	return LoadRegistry(f)
}

// LoadRegistry reads and parses a registry document from r.
func LoadRegistry(r io.Reader) (*RegistrySource, error) {
	var doc registryDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decoding registry document")
	}

	rs := &RegistrySource{
		SessionID: uuid.New(),
		packages:  make(map[Name]map[Version]registryVersion),
	}

	for pkgName, versions := range doc.Packages {
		name := MakeName(pkgName)
		byVersion := make(map[Version]registryVersion, len(versions))

		for verStr, entry := range versions {
			ver, err := ParseSemanticVersion(verStr)
			if err != nil {
				return nil, errors.Wrapf(err, "package %s: parsing version %q", pkgName, verStr)
			}

			deps := make([]Term, 0, len(entry.Dependencies))
			for depName, rangeStr := range entry.Dependencies {
				set, err := ParseVersionRange(rangeStr)
				if err != nil {
					return nil, errors.Wrapf(err, "package %s %s: parsing dependency range %q for %s", pkgName, verStr, rangeStr, depName)
				}
				deps = append(deps, NewTerm(MakeName(depName), NewVersionSetCondition(set)))
			}

			byVersion[ver] = registryVersion{version: ver, deps: deps}
		}

		rs.packages[name] = byVersion
	}

	return rs, nil
}

// GetVersions implements Source.
func (rs *RegistrySource) GetVersions(name Name) ([]Version, error) {
	versions, ok := rs.packages[name]
	if !ok {
		return nil, &PackageNotFoundError{Package: name}
	}

	result := make([]Version, 0, len(versions))
	for v := range versions {
		result = append(result, v)
	}
	slices.SortFunc(result, func(a, b Version) int { return a.Sort(b) })
	return result, nil
}

// GetDependencies implements Source.
func (rs *RegistrySource) GetDependencies(name Name, version Version) ([]Term, error) {
	versions, ok := rs.packages[name]
	if !ok {
		return nil, &PackageNotFoundError{Package: name}
	}
	entry, ok := versions[version]
	if !ok {
		return nil, &PackageVersionNotFoundError{Package: name, Version: version}
	}
	return entry.deps, nil
}

var _ Source = (*RegistrySource)(nil)
