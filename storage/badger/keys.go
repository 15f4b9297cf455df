// Copyright 2025 Poiesic Systems
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

package badger

// Key prefixes for different data types
const (
	collectionPrefix = "coll:"
	chunkPrefix      = "chunk:"
)

// makeCollectionKey generates a key for a collection by name.
func makeCollectionKey(name string) []byte {
	return []byte(collectionPrefix + name)
}

// makeChunkPrefix generates the key prefix shared by every chunk in a collection.
// Format: prefix:collection\x00
// Collection names cannot contain NUL, so no collection's prefix is a prefix
// of another's.
func makeChunkPrefix(collection string) []byte {
	buf := make([]byte, 0, len(chunkPrefix)+len(collection)+1)
	buf = append(buf, chunkPrefix...)
	buf = append(buf, collection...)
	return append(buf, 0)
}

// makeChunkKey generates a key for a chunk by collection and ID.
// Format: prefix:collection\x00id
func makeChunkKey(collection, id string) []byte {
	return append(makeChunkPrefix(collection), id...)
}
