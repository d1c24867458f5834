package notifier

import "errors"

// ErrPublish возвращается при ошибке доставки события
var ErrPublish = errors.New("notifier: failed to publish event")
