/*
Copyright © 2022 Bartłomiej Święcki (byo)

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package streamassembler

import "github.com/lbryio/streamcore/pkg/streamdescriptor"

// ErrSDBlobExists is returned when the stream descriptor blob this
// CreateStream call would produce is already present on disk under its
// sd_hash. Two concurrent CreateStream calls over the same file either
// both succeed (the content-addressed blob and SD blob are identical so
// the second write is a no-op dedup) or the second observes this error;
// either way no partial or corrupted file is ever left behind.
var ErrSDBlobExists = streamdescriptor.ErrSDBlobExists
