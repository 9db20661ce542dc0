package engine

import (
	"context"
	"errors"
)

const (
	pickUnavailableNotice = "Attaching files is not available"
	pickCancelledNotice   = "No files were selected"
	pickFailedNotice      = "Unable to attach files. Please try again."
)

// PickAttachments asks the picker for files and merges them into the set. On
// cancel or failure the set is unchanged and notice holds the text to show.
func (s *Session) PickAttachments(ctx context.Context) (added int, notice string) {
	if s.picker == nil {
		return 0, pickUnavailableNotice
	}
	files, err := s.picker.PickFiles(ctx)
	switch {
	case errors.Is(err, ErrPickCancelled):
		return 0, pickCancelledNotice
	case err != nil:
		s.logger.Warn("file picker failed", "error", err)
		return 0, pickFailedNotice
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ""
	}
	added = s.attachments.MergeAdd(files)
	if added > 0 {
		s.dirty = true
	}
	return added, ""
}
