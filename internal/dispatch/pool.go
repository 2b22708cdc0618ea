package dispatch

import (
	"context"
	"runtime"
	"sync"
)

// Result empareja el resultado de una tarea con su índice de envío.
type Result[R any] struct {
	Index int
	Path  string
	Value R
	Err   error
}

// DefaultWorkers es el paralelismo disponible en el host.
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// Run ejecuta fn sobre cada ruta con un pool fijo de workers y devuelve los
// resultados en el orden de envío, no en el de finalización.
//
// Las tareas son independientes: fn solo recibe la ruta. Si ctx se cancela,
// las tareas pendientes terminan con ctx.Err() sin ejecutarse.
func Run[R any](ctx context.Context, workers int, paths []string, fn func(context.Context, string) (R, error)) []Result[R] {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	type job struct {
		index int
		path  string
	}

	// Buffer completo para evitar bloqueo de workers
	jobs := make(chan job, len(paths))
	results := make(chan Result[R], len(paths))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res := Result[R]{Index: j.index, Path: j.path}
				if err := ctx.Err(); err != nil {
					res.Err = err
				} else {
					res.Value, res.Err = fn(ctx, j.path)
				}
				results <- res
			}
		}()
	}

	for i, p := range paths {
		jobs <- job{index: i, path: p}
	}
	close(jobs)

	// Monitor de cierre
	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]Result[R], len(paths))
	for res := range results {
		ordered[res.Index] = res
	}
	return ordered
}
