package ui

// jobDone is posted to the window when the worker finishes a job.
type jobDone struct{}

// runJobs executes jobs one at a time and reports each completion.
func runJobs(jobs <-chan func(), done func()) {
	for fn := range jobs {
		fn()
		done()
	}
}

// submit hands fn to the worker and pauses input until it completes. The
// controller must not be touched on the event goroutine meanwhile.
func (a *App) submit(fn func()) {
	a.busy = true
	a.paint()
	if a.jobs == nil {
		fn()
		a.handleEvent(jobDone{})
		return
	}
	a.jobs <- fn
}
