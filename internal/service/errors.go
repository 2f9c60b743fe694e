package service

import "errors"

// ErrEventIDRequired возвращается когда ключ идемпотентности отсутствует в событии
var ErrEventIDRequired = errors.New("event_id is required")

// ErrProcurementTimeout возвращается когда бюджет попыток или времени закупки
// одного ингредиента исчерпан, а недостача так и не закрыта
var ErrProcurementTimeout = errors.New("procurement retry budget exhausted")
