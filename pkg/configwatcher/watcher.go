package configwatcher

import (
	"path/filepath"
	"time"

	"pairjudge_backend/internal/config"
	"pairjudge_backend/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounce = time.Second

// Watch 监听配置文件变更并在防抖后重新加载。监听所在目录而不是文件本身：
// 编辑器和 K8s ConfigMap 更新多为"写临时文件后改名"，原 inode 上的 watch
// 会在第一次更新后失效。
func Watch(configPath string, apply func(*config.Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		watcher.Close()
		return err
	}
	dir := filepath.Dir(absPath)

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	go run(watcher, absPath, apply)
	return nil
}

func run(watcher *fsnotify.Watcher, absPath string, apply func(*config.Config)) {
	defer watcher.Close()

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(debounce)
			}

		case <-timer.C:
			cfg, err := config.LoadConfig(filepath.Dir(absPath))
			if err != nil {
				logger.Log.Error("Failed to reload config", zap.Error(err))
				continue
			}
			apply(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Log.Error("Config watcher error", zap.Error(err))
		}
	}
}
