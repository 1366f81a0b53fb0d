// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"path/filepath"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/fsnotify/fsnotify"
)

// editors often write a file in several steps
const settleTime = 200 * time.Millisecond

// ReloadFunc - receives each successfully re-read configuration
type ReloadFunc func(*Configuration)

// Watcher - re-read the configuration file whenever it changes
//
// implements background.Process
type Watcher struct {
	log      *logger.L
	fileName string
	watcher  *fsnotify.Watcher
	reload   ReloadFunc
}

// NewWatcher - watch the directory holding fileName
//
// the directory is watched so that editors which replace the file
// by renaming are also seen
func NewWatcher(fileName string, log *logger.L, reload ReloadFunc) (*Watcher, error) {
	fileName, err := filepath.Abs(filepath.Clean(fileName))
	if nil != err {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if nil != err {
		return nil, err
	}

	err = watcher.Add(filepath.Dir(fileName))
	if nil != err {
		watcher.Close()
		return nil, err
	}

	return &Watcher{
		log:      log,
		fileName: fileName,
		watcher:  watcher,
		reload:   reload,
	}, nil
}

// Run - wait for events until shutdown
func (w *Watcher) Run(args interface{}, shutdown <-chan struct{}) {
	log := w.log
	log.Infof("watching: %q", w.fileName)

	defer w.watcher.Close()

	var settle <-chan time.Time

loop:
	for {
		select {
		case <-shutdown:
			break loop

		case event, ok := <-w.watcher.Events:
			if !ok {
				break loop
			}
			if !w.relevant(event) {
				continue loop
			}
			log.Debugf("file event: %v", event)
			settle = time.After(settleTime)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				break loop
			}
			log.Errorf("watcher error: %s", err)

		case <-settle:
			settle = nil
			w.apply()
		}
	}
	log.Info("stopped")
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.fileName {
		return false
	}
	return 0 != event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Chmod)
}

// a bad edit keeps the previous settings in force
func (w *Watcher) apply() {
	configuration, err := GetConfiguration(w.fileName)
	if nil != err {
		w.log.Errorf("reload: %q  error: %s", w.fileName, err)
		return
	}
	w.log.Info("configuration reloaded")
	w.reload(configuration)
}
