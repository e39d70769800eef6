// Copyright 2014-2015 The Coname Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
// 	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

// Package leveldbkv implements kv.DB on top of goleveldb.
package leveldbkv

import (
	"fmt"

	"github.com/klever-hub/kleverblockchain-certificates/storage/kv"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

type leveldbkv struct {
	db   *leveldb.DB
	sync *opt.WriteOptions
}

// OpenDB opens, or creates, the database stored in the directory path.
func OpenDB(path string) (kv.DB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("leveldbkv: open %s: %w", path, err)
	}
	return Wrap(db), nil
}

// OpenMem returns an empty database held in memory. Its contents are
// lost on Close.
func OpenMem() (kv.DB, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return Wrap(db), nil
}

// Wrap uses db as a kv.DB. Every write is synced to disk.
func Wrap(db *leveldb.DB) kv.DB {
	return &leveldbkv{db: db, sync: &opt.WriteOptions{Sync: true}}
}

func (l *leveldbkv) Get(key []byte) ([]byte, error) {
	return l.db.Get(key, nil)
}

func (l *leveldbkv) Put(key, value []byte) error {
	return l.db.Put(key, value, l.sync)
}

func (l *leveldbkv) Delete(key []byte) error {
	return l.db.Delete(key, l.sync)
}

func (l *leveldbkv) NewBatch() kv.Batch {
	return new(leveldb.Batch)
}

func (l *leveldbkv) Write(b kv.Batch) error {
	wb, ok := b.(*leveldb.Batch)
	if !ok {
		return fmt.Errorf("leveldbkv.Write: expected *leveldb.Batch, got %T", b)
	}
	return l.db.Write(wb, l.sync)
}

func (l *leveldbkv) NewIterator(rg *kv.Range) kv.Iterator {
	if rg == nil {
		return l.db.NewIterator(nil, nil)
	}
	return l.db.NewIterator(&util.Range{Start: rg.Start, Limit: rg.Limit}, nil)
}

func (l *leveldbkv) Close() error {
	return l.db.Close()
}

func (l *leveldbkv) ErrNotFound() error {
	return leveldb.ErrNotFound
}
