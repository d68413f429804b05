package mock

import (
	"context"
	"io"

	"github.com/HlaKarki/ImageProcessor/internal/port"
	"github.com/HlaKarki/ImageProcessor/internal/uuid"
)

// ImageUploader implements port.ImageUploader for tests.
type ImageUploader struct {
	Out    *port.UploadImageOutput
	Err    error
	Called bool
	In     port.UploadImageInput
	Body   []byte
}

func (m *ImageUploader) UploadImage(ctx context.Context, in port.UploadImageInput) (*port.UploadImageOutput, error) {
	m.Called = true
	m.In = in
	if in.Reader != nil {
		m.Body, _ = io.ReadAll(in.Reader)
	}
	return m.Out, m.Err
}

// JobGetter implements port.JobGetter for tests.
type JobGetter struct {
	Out    *port.JobView
	Err    error
	Called bool
	JobID  uuid.UUID
	UserID uuid.UUID
}

func (m *JobGetter) GetJob(ctx context.Context, jobID, userID uuid.UUID) (*port.JobView, error) {
	m.Called = true
	m.JobID, m.UserID = jobID, userID
	return m.Out, m.Err
}

// JobLister implements port.JobLister for tests.
type JobLister struct {
	Out    *port.JobPage
	Err    error
	Called bool
	In     port.ListJobsInput
}

func (m *JobLister) ListJobs(ctx context.Context, in port.ListJobsInput) (*port.JobPage, error) {
	m.Called = true
	m.In = in
	return m.Out, m.Err
}

// ImageProcessor implements port.ImageProcessor for tests.
type ImageProcessor struct {
	Err    error
	Called bool
	Msg    port.ImageJobMessage
	// Block makes ProcessImage wait for ctx cancellation.
	Block bool
}

func (m *ImageProcessor) ProcessImage(ctx context.Context, msg port.ImageJobMessage) error {
	m.Called = true
	m.Msg = msg
	if m.Block {
		<-ctx.Done()
		return ctx.Err()
	}
	return m.Err
}

// ImageAnalyser implements port.ImageAnalyser for tests.
type ImageAnalyser struct {
	Err    error
	Called bool
	Msg    port.AIJobMessage
}

func (m *ImageAnalyser) AnalyseImage(ctx context.Context, msg port.AIJobMessage) error {
	m.Called = true
	m.Msg = msg
	return m.Err
}

// RetentionSweeper implements port.RetentionSweeper for tests.
type RetentionSweeper struct {
	Out    port.SweepReport
	Err    error
	Called bool
}

func (m *RetentionSweeper) Sweep(ctx context.Context) (port.SweepReport, error) {
	m.Called = true
	return m.Out, m.Err
}

// Authenticator implements port.Authenticator for tests.
type Authenticator struct {
	Out            *port.AuthToken
	RegisterErr    error
	LoginErr       error
	RegisterCalled bool
	LoginCalled    bool
	In             port.CredentialsInput
}

func (m *Authenticator) Register(ctx context.Context, in port.CredentialsInput) (*port.AuthToken, error) {
	m.RegisterCalled = true
	m.In = in
	return m.Out, m.RegisterErr
}

func (m *Authenticator) Login(ctx context.Context, in port.CredentialsInput) (*port.AuthToken, error) {
	m.LoginCalled = true
	m.In = in
	return m.Out, m.LoginErr
}
