// Package pipeline содержит оркестрацию конвертации одного изображения:
// проверку возможностей, валидацию исходника, изменение размера в памяти,
// кодирование с атомарной записью и перенос EXIF. Пакетной логики здесь
// нет - распределение задач по горутинам выполняет пакет worker.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ErickHdzV/ImgPilot/internal/capability"
	"github.com/ErickHdzV/ImgPilot/internal/convert"
	"github.com/ErickHdzV/ImgPilot/internal/imageio"
	"github.com/ErickHdzV/ImgPilot/internal/metadata"
	"github.com/ErickHdzV/ImgPilot/internal/optimize"
	"github.com/ErickHdzV/ImgPilot/internal/output"
	"github.com/ErickHdzV/ImgPilot/internal/rembg"
	"github.com/ErickHdzV/ImgPilot/internal/resize"
	"github.com/ErickHdzV/ImgPilot/internal/stats"
)

// Task описывает одну конвертацию: исходный файл и целевой формат.
type Task struct {
	// SrcPath - путь к исходному изображению.
	SrcPath string

	// OutputDir - директория результата. Пустая строка означает
	// директорию исходного файла.
	OutputDir string

	// Format - целевой формат.
	Format imageio.Format

	// Quality - качество кодирования (0-100).
	Quality int

	// Resize - параметры изменения размера, nil или пустые - без
	// изменения.
	Resize *resize.Options

	// CustomName - имя результата вместо имени исходника (без
	// расширения). Пустая строка - использовать имя исходника.
	CustomName string

	// MultiFormat - файл конвертируется сразу в несколько форматов;
	// к пользовательскому имени добавляется суффикс формата.
	MultiFormat bool

	// KeepMetadata - переносить EXIF исходника в результат.
	KeepMetadata bool

	// MaxPaths - предел числа контуров при трассировке в SVG
	// (0 - значение по умолчанию).
	MaxPaths int

	// RemoveBackground - удалить фон перед конвертацией. Промежуточный
	// файл "<имя>_no_bg.png" остаётся в директории результата и служит
	// исходником для кодирования.
	RemoveBackground bool

	// TargetBytes - целевой размер результата в байтах. Если больше
	// нуля, качество подбирается двоичным поиском, а task.Quality
	// игнорируется. Только для JPEG и WebP.
	TargetBytes int64
}

// RemovalOnly сообщает, что задача состоит только из удаления фона:
// фон удаляется, целевой формат не задан и кодирование не выполняется.
func (t Task) RemovalOnly() bool {
	return t.RemoveBackground && t.Format == 0
}

// Result содержит исход одной задачи.
type Result struct {
	// Task - задача, к которой относится результат.
	Task Task

	// DstPath - путь к созданному файлу, пустой при ошибке.
	DstPath string

	// Stat - статистика сжатия, заполнена при успехе.
	Stat stats.Stat

	// Quality - фактически использованное качество. Отличается от
	// task.Quality, когда качество подбиралось под целевой размер.
	Quality int

	// Warning - некритичное замечание (например, EXIF не перенесён).
	Warning string

	// Err - ошибка задачи, nil при успехе.
	Err error
}

// addWarning добавляет замечание, не затирая предыдущие.
func (r *Result) addWarning(w string) {
	if r.Warning == "" {
		r.Warning = w
		return
	}
	r.Warning += "; " + w
}

// Pipeline выполняет задачи конвертации и удаления фона.
type Pipeline struct {
	reg     *capability.Registry
	remover *rembg.Remover
}

// New создаёт конвейер с переданным реестром возможностей.
func New(reg *capability.Registry) *Pipeline {
	return &Pipeline{
		reg:     reg,
		remover: rembg.New(reg),
	}
}

// Process выполняет одну задачу конвертации. Последовательность
// фиксирована: проверка возможностей до любого обращения к файлам,
// валидация исходника полным декодированием, опциональное удаление
// фона, изменение размера в памяти, подбор качества под целевой
// размер, кодирование во временный файл с атомарным переименованием,
// перенос EXIF (best-effort). Ошибка на любом шаге не оставляет
// частично записанных файлов.
func (p *Pipeline) Process(ctx context.Context, task Task) Result {
	start := time.Now()
	res := Result{Task: task}

	// Недоступная возможность отсекается до чтения исходника
	switch task.Format {
	case imageio.FormatAVIF:
		if err := p.reg.Require(capability.CapAVIFEncode); err != nil {
			res.Err = err
			return res
		}
	case imageio.FormatSVG:
		if err := p.reg.Require(capability.CapSVGTrace); err != nil {
			res.Err = err
			return res
		}
	}
	if task.RemoveBackground {
		if err := p.reg.Require(capability.CapBackgroundRemoval); err != nil {
			res.Err = err
			return res
		}
	}

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	if !imageio.IsInputPath(task.SrcPath) {
		res.Err = fmt.Errorf("%w: расширение %q не принимается на вход",
			imageio.ErrInvalidImage, filepath.Ext(task.SrcPath))
		return res
	}

	// EXIF извлекается из оригинала до декодирования и до удаления
	// фона; неудача не прерывает задачу
	var rawExif []byte
	if task.KeepMetadata {
		if metadata.Supports(task.Format) {
			raw, err := metadata.Extract(task.SrcPath)
			if err != nil {
				res.addWarning(fmt.Sprintf("EXIF не извлечён: %v", err))
			} else {
				rawExif = raw
			}
		} else {
			res.addWarning(fmt.Sprintf("формат %s не хранит EXIF, метаданные пропущены", task.Format))
		}
	}

	outDir := task.OutputDir
	if outDir == "" {
		outDir = filepath.Dir(task.SrcPath)
	}
	if err := output.EnsureDir(outDir); err != nil {
		res.Err = err
		return res
	}

	srcPath := task.SrcPath
	if task.RemoveBackground {
		noBgPath := output.NoBackgroundPath(task.SrcPath, outDir)
		if err := p.remover.Remove(ctx, task.SrcPath, noBgPath); err != nil {
			res.Err = err
			return res
		}
		// Дальше кодируется версия без фона
		srcPath = noBgPath
	}

	img, _, err := imageio.Load(srcPath)
	if err != nil {
		res.Err = err
		return res
	}

	if task.Resize.Requested() {
		resized, rerr := resize.Apply(img, task.Resize)
		if rerr != nil {
			res.Err = rerr
			return res
		}
		img = resized
	}

	quality := task.Quality
	if task.TargetBytes > 0 {
		measure, merr := optimize.MeasureEncoded(img, task.Format)
		if merr != nil {
			res.Err = merr
			return res
		}
		choice, serr := optimize.Search(task.TargetBytes, measure)
		if serr != nil {
			res.Err = serr
			return res
		}
		quality = choice.Quality
		if !choice.Fits {
			res.addWarning(fmt.Sprintf("целевой размер %s недостижим, выбрано минимальное качество",
				stats.FormatBytes(task.TargetBytes)))
		}
	}
	res.Quality = quality

	dstPath := output.BuildDstPath(task.SrcPath, outDir, task.Format, task.CustomName, task.MultiFormat)

	opts := convert.Options{Quality: quality, MaxPaths: task.MaxPaths}
	if err := convert.Encode(ctx, p.reg, img, task.Format, dstPath, opts); err != nil {
		res.Err = err
		return res
	}

	if len(rawExif) > 0 {
		if err := metadata.Embed(dstPath, task.Format, rawExif); err != nil {
			res.addWarning(fmt.Sprintf("EXIF не перенесён: %v", err))
		}
	}

	st, err := stats.FromFiles(task.SrcPath, dstPath)
	if err != nil {
		// Результат записан, не прочитался только размер
		res.addWarning(fmt.Sprintf("статистика не собрана: %v", err))
	}
	st.Duration = time.Since(start)

	res.DstPath = dstPath
	res.Stat = st
	return res
}

// RemoveBackground удаляет фон исходного изображения и сохраняет
// результат как "<имя>_no_bg.png" в директории результата. Возвращает
// Result с путём к созданному файлу и статистикой.
func (p *Pipeline) RemoveBackground(ctx context.Context, srcPath, outputDir string) Result {
	start := time.Now()
	res := Result{Task: Task{SrcPath: srcPath, OutputDir: outputDir}}

	if err := p.reg.Require(capability.CapBackgroundRemoval); err != nil {
		res.Err = err
		return res
	}

	if !imageio.IsInputPath(srcPath) {
		res.Err = fmt.Errorf("%w: расширение %q не принимается на вход",
			imageio.ErrInvalidImage, filepath.Ext(srcPath))
		return res
	}

	outDir := outputDir
	if outDir == "" {
		outDir = filepath.Dir(srcPath)
	}
	if err := output.EnsureDir(outDir); err != nil {
		res.Err = err
		return res
	}
	dstPath := output.NoBackgroundPath(srcPath, outDir)

	if err := p.remover.Remove(ctx, srcPath, dstPath); err != nil {
		res.Err = err
		return res
	}

	st, err := stats.FromFiles(srcPath, dstPath)
	if err != nil {
		res.Warning = fmt.Sprintf("статистика не собрана: %v", err)
	}
	st.Duration = time.Since(start)

	res.DstPath = dstPath
	res.Stat = st
	return res
}

/*
Возможные расширения пакета pipeline:
- Повторное использование декодированного изображения между форматами
  одного исходника.
- Docker-режим: выполнение задач в изолированном контейнере.
*/
