package app

import (
	"context"
	"os"
	"path/filepath"

	"ivrit/internal/core/errors"
	"ivrit/internal/engine/stubgen"
	"ivrit/internal/shared/observability"
	"ivrit/internal/shared/util"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ProcessFile rewrites one source file and writes its declaration file when
// the rewrite changed anything. Unchanged files leave any existing stub alone.
func (a *App) ProcessFile(ctx context.Context, path string) (result FileResult, err error) {
	ctx, span := observability.Tracer.Start(ctx, "app.ProcessFile", trace.WithAttributes(attribute.String("ivrit.path", path)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "process file")
		}
		span.SetAttributes(attribute.Bool("ivrit.written", result.Written))
		span.End()
	}()

	if err := ctx.Err(); err != nil {
		return FileResult{}, err
	}
	if err := a.limiter.Wait(ctx, 1); err != nil {
		return FileResult{}, err
	}

	result = FileResult{Path: path, StubPath: StubPath(path)}
	policy := a.currentPolicy()
	if policy.IgnoresFile(filepath.Base(path)) {
		return result, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		code := errors.CodeIO
		if os.IsNotExist(err) {
			code = errors.CodeNotFound
		}
		return result, errors.AddContext(errors.Wrap(err, code, "read source"), errors.CtxPath, path)
	}

	mod, err := a.parser.ParseFile(path, content)
	if err != nil {
		return result, err
	}
	observability.FilesScannedTotal.Inc()

	res := stubgen.Generate(mod, policy)
	a.counter.Merge(res.Unmatched)
	record(res)

	result.Inferred = res.Inferred
	result.Synthesized = res.Synthesized
	result.Unmatched = res.Unmatched
	result.Imports = res.Imports
	if !res.Changed {
		return result, nil
	}

	if err := util.WriteStringWithDirs(result.StubPath, res.Stub(), 0o644); err != nil {
		wrapped := errors.Wrap(err, errors.CodeIO, "write stub")
		wrapped = errors.AddContext(wrapped, errors.CtxPath, result.StubPath)
		return result, errors.AddContext(wrapped, errors.CtxOperation, "write")
	}
	observability.StubsWrittenTotal.Inc()
	result.Written = true
	return result, nil
}

func record(res stubgen.Result) {
	observability.ParametersInferredTotal.Add(float64(res.Inferred))
	observability.ConstructorsSynthesizedTotal.Add(float64(res.Synthesized))
	unmatched := 0
	for _, n := range res.Unmatched {
		unmatched += n
	}
	observability.ParametersUnmatchedTotal.Add(float64(unmatched))
}

// failureReason classifies errors that only affect the file they came from.
// Any other error aborts the run.
func failureReason(err error) (string, bool) {
	switch {
	case errors.IsCode(err, errors.CodeParse):
		return "parse", true
	case errors.IsCode(err, errors.CodeNotFound):
		return "read", true
	case errors.IsCode(err, errors.CodeNotSupported):
		return "unsupported", true
	default:
		return "", false
	}
}
