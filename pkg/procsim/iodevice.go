package procsim

// ioJob is a waiting I/O request.
type ioJob struct {
	Pid       string
	Remaining int
}

// IODevice models a single-server FIFO I/O device (spec.md §4.2): one
// active job plus an ordered waiting list.
type IODevice struct {
	ActivePid       string
	ActiveRemaining int
	Waiting         []ioJob
}

// NewIODevice returns an idle device.
func NewIODevice() *IODevice {
	return &IODevice{}
}

// Busy reports whether a job is currently being served.
func (d *IODevice) Busy() bool {
	return d.ActivePid != ""
}

// Enqueue admits a new I/O request. If the device is idle, the request
// starts service immediately; otherwise it joins the waiting list.
func (d *IODevice) Enqueue(pid string, length int) {
	if !d.Busy() {
		d.ActivePid = pid
		d.ActiveRemaining = length
		return
	}
	d.Waiting = append(d.Waiting, ioJob{Pid: pid, Remaining: length})
}

// AdvanceOne decrements the active job's remainder by one tick. When it
// reaches zero the served pid is released (returned) and the head of
// the waiting list, if any, is promoted to active. Promotion is also
// attempted when the device was already idle, preserving the invariant
// that active is non-empty whenever the waiting list is non-empty.
func (d *IODevice) AdvanceOne() (released string) {
	if !d.Busy() {
		d.promoteNext()
		return ""
	}

	d.ActiveRemaining--
	if d.ActiveRemaining > 0 {
		return ""
	}

	released = d.ActivePid
	d.ActivePid = ""
	d.ActiveRemaining = 0
	d.promoteNext()
	return released
}

func (d *IODevice) promoteNext() {
	if d.Busy() || len(d.Waiting) == 0 {
		return
	}
	job := d.Waiting[0]
	d.Waiting = d.Waiting[1:]
	d.ActivePid = job.Pid
	d.ActiveRemaining = job.Remaining
}

// RemovePid strips pid from the device, whether active or waiting. Used
// by RemoveProcess.
func (d *IODevice) RemovePid(pid string) {
	if d.ActivePid == pid {
		d.ActivePid = ""
		d.ActiveRemaining = 0
		d.promoteNext()
		return
	}
	for i, job := range d.Waiting {
		if job.Pid == pid {
			d.Waiting = append(d.Waiting[:i], d.Waiting[i+1:]...)
			return
		}
	}
}

// WaitingPids returns a snapshot of the waiting list in FIFO order.
func (d *IODevice) WaitingPids() []string {
	out := make([]string, len(d.Waiting))
	for i, job := range d.Waiting {
		out[i] = job.Pid
	}
	return out
}
