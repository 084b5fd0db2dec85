// Copyright (c) 2025, The eksops Authors.
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

package header

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInitAt(t *testing.T) {
	pst := time.FixedZone("PST", -8*3600)

	tests := []struct {
		name    string
		prior   map[string]string
		version string
		at      time.Time
		want    map[string]string
	}{
		{
			name:    "stale metadata replaced",
			prior:   map[string]string{"stale": "x"},
			version: "v1.0.0",
			at:      time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			want:    map[string]string{"timestamp": "2025-02-01T00:00:00Z", "version": "v1.0.0"},
		},
		{
			name: "timestamp normalized to UTC without version",
			at:   time.Date(2025, 1, 15, 10, 30, 0, 0, pst),
			want: map[string]string{"timestamp": "2025-01-15T18:30:00Z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Header{Metadata: tt.prior}
			h.InitAt(KindClusterReport, tt.version, tt.at)

			assert.Equal(t, KindClusterReport, h.Kind)
			assert.Equal(t, APIVersion, h.APIVersion)
			assert.Equal(t, tt.want, h.Metadata)
		})
	}
}
