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

package defaults

import (
	"testing"
	"time"
)

func TestTimeoutConstants(t *testing.T) {
	tests := []struct {
		name     string
		timeout  time.Duration
		minValue time.Duration
		maxValue time.Duration
	}{
		// Handler timeouts
		{"NodeLogHandlerTimeout", NodeLogHandlerTimeout, 1 * time.Minute, 15 * time.Minute},
		{"DiscoveryTimeout", DiscoveryTimeout, 1 * time.Minute, 15 * time.Minute},
		{"DiscoveryRegionTimeout", DiscoveryRegionTimeout, 10 * time.Second, 5 * time.Minute},

		// Server timeouts
		{"ServerReadTimeout", ServerReadTimeout, 5 * time.Second, 30 * time.Second},
		{"ServerWriteTimeout", ServerWriteTimeout, 15 * time.Second, 60 * time.Second},
		{"ServerIdleTimeout", ServerIdleTimeout, 30 * time.Second, 300 * time.Second},
		{"ServerShutdownTimeout", ServerShutdownTimeout, 10 * time.Second, 60 * time.Second},

		// K8s timeouts
		{"K8sListTimeout", K8sListTimeout, 10 * time.Second, 5 * time.Minute},
		{"K8sClientTimeout", K8sClientTimeout, 5 * time.Second, 60 * time.Second},

		// HTTP client timeouts
		{"HTTPClientTimeout", HTTPClientTimeout, 10 * time.Second, 60 * time.Second},
		{"HTTPConnectTimeout", HTTPConnectTimeout, 1 * time.Second, 15 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.timeout < tt.minValue {
				t.Errorf("%s (%v) is below minimum expected value (%v)", tt.name, tt.timeout, tt.minValue)
			}
			if tt.timeout > tt.maxValue {
				t.Errorf("%s (%v) is above maximum expected value (%v)", tt.name, tt.timeout, tt.maxValue)
			}
		})
	}
}

func TestDiscoveryRegionTimeoutLessThanRun(t *testing.T) {
	if DiscoveryRegionTimeout >= DiscoveryTimeout {
		t.Errorf("DiscoveryRegionTimeout (%v) should be less than DiscoveryTimeout (%v)",
			DiscoveryRegionTimeout, DiscoveryTimeout)
	}
}

func TestServerTimeoutRelationships(t *testing.T) {
	if ServerReadTimeout > ServerWriteTimeout {
		t.Errorf("ServerReadTimeout (%v) should not exceed ServerWriteTimeout (%v)",
			ServerReadTimeout, ServerWriteTimeout)
	}
	if ServerReadHeaderTimeout > ServerReadTimeout {
		t.Errorf("ServerReadHeaderTimeout (%v) should not exceed ServerReadTimeout (%v)",
			ServerReadHeaderTimeout, ServerReadTimeout)
	}
}

func TestEKSTokenTiming(t *testing.T) {
	if EKSTokenPresignExpiry >= EKSTokenLifetime {
		t.Errorf("EKSTokenPresignExpiry (%v) should be less than EKSTokenLifetime (%v)",
			EKSTokenPresignExpiry, EKSTokenLifetime)
	}
}

func TestRemediationLimits(t *testing.T) {
	if NodesMax <= 0 {
		t.Errorf("NodesMax must be positive, got %d", NodesMax)
	}
	if EC2FilterValuesMax <= 0 || EC2FilterValuesMax > 1000 {
		t.Errorf("EC2FilterValuesMax out of range: %d", EC2FilterValuesMax)
	}
	if NodeListPageSize <= 0 {
		t.Errorf("NodeListPageSize must be positive, got %d", NodeListPageSize)
	}
	if SSMExecutionsBurst < 1 {
		t.Errorf("SSMExecutionsBurst must be at least 1, got %d", SSMExecutionsBurst)
	}
}
