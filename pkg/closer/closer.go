package closer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Closer закрывает зарегистрированные ресурсы в обратном порядке (LIFO).
// Каждый ресурс имеет имя, оно попадает в текст ошибки.
type Closer struct {
	mu            sync.Mutex
	resources     []resource
	once          sync.Once
	forcedTimeout time.Duration
}

// Func — сигнатура функции закрытия ресурса.
type Func func(ctx context.Context) error

type resource struct {
	name  string
	close Func
}

// NewCloser создает Closer. forcedTimeout задаёт время на принудительное закрытие
// оставшихся ресурсов, если контекст Close истёк раньше.
func NewCloser(forcedTimeout time.Duration) *Closer {
	const defaultForcedTimeout = 2 * time.Second

	if forcedTimeout <= 0 {
		forcedTimeout = defaultForcedTimeout
	}

	return &Closer{
		forcedTimeout: forcedTimeout,
	}
}

// Add регистрирует функцию закрытия ресурса.
func (c *Closer) Add(name string, f Func) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resources = append(c.resources, resource{name: name, close: f})
}

// AddFunc регистрирует закрытие, которому не нужен контекст (клиенты, соединения).
func (c *Closer) AddFunc(name string, f func() error) {
	c.Add(name, func(context.Context) error { return f() })
}

// Len возвращает число зарегистрированных ресурсов.
func (c *Closer) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.resources)
}

// Close закрывает ресурсы по одному в порядке LIFO. Повторный вызов ничего не делает.
// Если ctx истекает, оставшиеся ресурсы закрываются параллельно с собственным таймаутом.
func (c *Closer) Close(ctx context.Context) error {
	var err error

	c.once.Do(func() {
		c.mu.Lock()
		resources := c.resources
		c.mu.Unlock()

		remaining, errs := c.closeInOrder(ctx, resources)
		if remaining == 0 {
			if len(errs) > 0 {
				err = fmt.Errorf("shutdown finished with error(s):\n%s", strings.Join(errs, "\n"))
			}
			return
		}

		errs = append(errs, c.forceClose(resources[:remaining])...)
		err = fmt.Errorf(
			"shutdown interrupted, %d/%d resources closed gracefully:\n%s",
			len(resources)-remaining,
			len(resources),
			strings.Join(errs, "\n"),
		)
	})

	return err
}

// closeInOrder возвращает число ещё не закрытых ресурсов (голова среза) и ошибки закрытых.
func (c *Closer) closeInOrder(ctx context.Context, resources []resource) (int, []string) {
	var errs []string

	for i := len(resources) - 1; i >= 0; i-- {
		res := resources[i]
		done := make(chan error, 1)

		go func() {
			done <- res.close(ctx)
		}()

		select {
		case err := <-done:
			if err != nil {
				errs = append(errs, fmt.Sprintf("[!] %s: %v", res.name, err))
			}
		case <-ctx.Done():
			// Ресурс i уже закрывается, принудительно повторяем и его.
			return i + 1, errs
		}
	}

	return 0, errs
}

func (c *Closer) forceClose(resources []resource) []string {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []string
	)

	ctx, cancel := context.WithTimeout(context.Background(), c.forcedTimeout)
	defer cancel()

	for _, res := range resources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := res.close(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Sprintf("[FORCED] %s: %v", res.name, err))
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return errs
}
