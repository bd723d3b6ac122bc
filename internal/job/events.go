package job

// EventKind - тип события задачи.
type EventKind int

const (
	// EventProgress - прогресс 0-100, не убывает.
	EventProgress EventKind = iota
	// EventStatus - текстовое описание текущего шага.
	EventStatus
	// EventOverwriteRequest - выходной файл уже существует, нужен ответ ResolveOverwrite.
	EventOverwriteRequest
	// EventFinished - задача завершена успешно.
	EventFinished
	// EventError - задача завершилась с ошибкой.
	EventError
)

// String возвращает имя типа события.
func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventStatus:
		return "status"
	case EventOverwriteRequest:
		return "overwrite_request"
	case EventFinished:
		return "finished"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event - событие задачи. Заполнены только поля, относящиеся к Kind.
type Event struct {
	Kind EventKind

	// Progress - для EventProgress.
	Progress int

	// Message - для EventStatus и EventError.
	Message string

	// Path - путь-кандидат для EventOverwriteRequest; итоговый файл склейки для EventFinished.
	Path string

	// Results - для EventFinished.
	Results []Result

	// Err - для EventError.
	Err error
}

// mailbox доставляет события без блокировки фоновой горутины:
// очередь неограничена, порядок сохраняется.
type mailbox struct {
	in  chan Event
	out chan Event
}

func newMailbox() *mailbox {
	return &mailbox{
		in:  make(chan Event),
		out: make(chan Event),
	}
}

// start запускает доставку; вызывается один раз из Job.Start.
func (m *mailbox) start() {
	go m.pump()
}

func (m *mailbox) send(ev Event) {
	m.in <- ev
}

func (m *mailbox) close() {
	close(m.in)
}

// pump перекладывает события из in в out через очередь.
func (m *mailbox) pump() {
	defer close(m.out)

	var queue []Event
	in := m.in
	for in != nil || len(queue) > 0 {
		var out chan Event
		var next Event
		if len(queue) > 0 {
			out = m.out
			next = queue[0]
		}

		select {
		case ev, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			queue = append(queue, ev)
		case out <- next:
			queue = queue[1:]
		}
	}
}
