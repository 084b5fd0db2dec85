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

// Package version parses and orders Kubernetes version strings.
//
// EKS reports cluster versions as "1.31" and node versions as
// "v1.31.2-eks-94953ac". ParseVersion accepts both, keeping the build suffix
// in Extras, and Sort orders a slice of such strings oldest first:
//
//	vs := []string{"1.31", "1.9", "1.30"}
//	version.Sort(vs) // [1.9 1.30 1.31]
//
// Compare only looks at the components both sides specify, so "1.31" and
// "1.31.2" compare equal.
package version
