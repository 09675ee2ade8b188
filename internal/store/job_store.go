package store

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/autoasmr/api/internal/model"
)

var (
	ErrJobNotFound  = errors.New("job not found")
	ErrDuplicateJob = errors.New("job already exists")
)

// JobStore is the process-wide job registry. Every read hands out a copy, so
// callers never observe a job mid-mutation.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*model.Job
}

func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*model.Job)}
}

// Add stores a new job. Ids are unique for the life of the process.
func (s *JobStore) Add(job *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; ok {
		return errors.Wrapf(ErrDuplicateJob, "job %s", job.ID)
	}
	s.jobs[job.ID] = job.Clone()
	return nil
}

// Get returns a copy of the job.
func (s *JobStore) Get(id string) (*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job.Clone(), nil
}

// Update applies fn to the stored job under the write lock and returns a copy
// of the result.
func (s *JobStore) Update(id string, fn func(job *model.Job)) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	fn(job)
	return job.Clone(), nil
}

// Delete removes a job. Activity entries that reference it are left alone.
func (s *JobStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return ErrJobNotFound
	}
	delete(s.jobs, id)
	return nil
}

// List returns copies of all jobs, newest first.
func (s *JobStore) List() []*model.Job {
	s.mu.RLock()
	out := make([]*model.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Count returns the number of stored jobs.
func (s *JobStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
