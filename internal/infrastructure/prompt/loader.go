package prompt

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/productcat/backend/internal/domain"
	"go.uber.org/zap"
)

// Template names shipped in the prompts directory
const (
	CategoryPrompt         = "category_prompt"
	EnhancedCategoryPrompt = "enhanced_category_prompt"
)

// Loader reads prompt templates from <dir>/<name>.txt
type Loader struct {
	dir    string
	logger *zap.Logger
}

// NewLoader creates a loader rooted at dir
func NewLoader(dir string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{dir: dir, logger: logger.Named("prompt")}
}

// Load returns the raw template text
func (l *Loader) Load(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return "", fmt.Errorf("%w: %q", domain.ErrTemplateNotFound, name)
	}

	data, err := os.ReadFile(filepath.Join(l.dir, name+".txt"))
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.Error("prompt file not found", zap.String("name", name), zap.String("dir", l.dir))
		return "", fmt.Errorf("%w: %q", domain.ErrTemplateNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("reading prompt %q: %w", name, err)
	}

	return string(data), nil
}

// Render loads the named template and fills its placeholders
func (l *Loader) Render(name string, variables map[string]string) (string, error) {
	tmpl, err := l.Load(name)
	if err != nil {
		return "", err
	}

	out, err := Format(name, tmpl, variables)
	if err != nil {
		l.logger.Error("missing required variable in prompt", zap.String("name", name), zap.Error(err))
		return "", err
	}
	return out, nil
}
