// ABOUTME: User-defined commands loaded from YAML files in the commands directory
// ABOUTME: fsnotify watcher reloads definitions when files change

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/ternchat/tern/internal/log"
)

// customDef is the on-disk shape of a custom command file.
type customDef struct {
	Name        string `yaml:"name"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	// Template is the prompt sent when the command runs. The literal
	// {{args}} expands to the command's arguments.
	Template string `yaml:"template"`
}

// LoadCustom reads every .yaml/.yml file in dir and registers the
// resulting commands. Previously loaded custom commands are replaced.
// A missing directory is not an error.
func (r *Registry) LoadCustom(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			r.dropCustom()
			return nil
		}
		return fmt.Errorf("reading commands directory: %w", err)
	}

	r.dropCustom()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		cmd, err := loadCustomFile(path)
		if err != nil {
			log.Warn("skipping custom command", "file", path, "err", err)
			continue
		}
		r.register(cmd)
	}
	return nil
}

func loadCustomFile(path string) (*Command, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var def customDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing command file: %w", err)
	}

	if def.Name == "" {
		def.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if def.Template == "" {
		return nil, fmt.Errorf("command %q has no template", def.Name)
	}

	template := def.Template
	return &Command{
		Name:        def.Name,
		Title:       def.Title,
		Description: def.Description,
		Custom:      true,
		Execute: func(ctx *Context, args string) (string, error) {
			if ctx.SendPrompt == nil {
				return "Prompt dispatch not available.", nil
			}
			text := strings.ReplaceAll(template, "{{args}}", args)
			if err := ctx.SendPrompt(text); err != nil {
				return "", err
			}
			return "", nil
		},
	}, nil
}

// Watch reloads the custom commands whenever dir changes. The returned
// stop function closes the watcher. onReload, when non-nil, runs after
// each successful reload.
func (r *Registry) Watch(dir string, onReload func()) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating command watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching commands directory: %w", err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if err := r.LoadCustom(dir); err != nil {
					log.Warn("reloading custom commands", "err", err)
					continue
				}
				if onReload != nil {
					onReload()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("command watcher", "err", err)
			}
		}
	}()

	return func() { watcher.Close() }, nil
}
