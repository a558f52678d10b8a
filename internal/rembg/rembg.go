// Package rembg содержит удаление фона внешним инструментом rembg.
package rembg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ErickHdzV/ImgPilot/internal/capability"
)

// Remover убирает фон с изображений через внешний rembg.
type Remover struct {
	// reg - реестр возможностей.
	reg *capability.Registry

	// timeout - таймаут на обработку одного файла: модель
	// сегментации при первом запуске может скачиваться долго.
	timeout time.Duration
}

// New создаёт новый Remover.
func New(reg *capability.Registry) *Remover {
	return &Remover{
		reg:     reg,
		timeout: 5 * time.Minute,
	}
}

// SetTimeout устанавливает таймаут на обработку одного файла.
func (r *Remover) SetTimeout(d time.Duration) {
	r.timeout = d
}

// Remove убирает фон с изображения srcPath и записывает PNG с
// прозрачным фоном в dstPath. Доступность возможности проверяется
// до любых операций с файлами; запись атомарна.
func (r *Remover) Remove(ctx context.Context, srcPath, dstPath string) error {
	if err := r.reg.Require(capability.CapBackgroundRemoval); err != nil {
		return err
	}
	st := r.reg.Get(capability.CapBackgroundRemoval)

	dstDir := filepath.Dir(dstPath)
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return fmt.Errorf("не удалось создать директорию %s: %w", dstDir, err)
	}

	ext := filepath.Ext(dstPath)
	tmpPath := strings.TrimSuffix(dstPath, ext) + ".converting" + ext

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// rembg i <вход> <выход>
	cmd := exec.CommandContext(ctx, st.Path, "i", srcPath, tmpPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = os.Remove(tmpPath)

		errMsg := err.Error()
		if stderr.Len() > 0 {
			errMsg = fmt.Sprintf("%s: %s", err.Error(), strings.TrimSpace(stderr.String()))
		}
		return fmt.Errorf("rembg: %s", errMsg)
	}

	if err := os.Rename(tmpPath, dstPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("не удалось переименовать %s -> %s: %w", tmpPath, dstPath, err)
	}
	return nil
}

/*
Возможные расширения:
- Выбор модели сегментации (u2net, isnet, silueta)
- Пакетный режим rembg p для целых директорий
*/
