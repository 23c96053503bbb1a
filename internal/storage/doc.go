/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage persists the page list. A Repository encodes the pages as
// one versioned JSON document and keeps it under a single key of a KV
// backend; it also migrates the legacy four-collection layout and installs
// the starter dataset when nothing is stored yet.
//
// Backends: a JSON file per key with transactional writes and timestamped
// backups, an embedded SQLite database, a diskv directory, Redis and
// PostgreSQL. MemoryKV serves tests.
package storage
