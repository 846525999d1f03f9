package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"media-catalog/internal/catalog"
	"media-catalog/internal/mediatypes"
	"media-catalog/internal/model"
	"media-catalog/internal/transfer"
)

// Record schemas the gallery command can hand off.
const (
	recordsPhotos = "photos"
	recordsVideos = "videos"
	recordsTracks = "tracks"
	recordsItems  = "items"
)

type handoffSummary struct {
	Records   string `json:"records"`
	Selected  string `json:"selected"`
	Index     int    `json:"index"`
	Count     int    `json:"count"`
	Handle    int64  `json:"handle,omitempty"`
	Bytes     int64  `json:"bytes"`
	LiveAfter int    `json:"live_after"`
	First     string `json:"first,omitempty"`
	Last      string `json:"last,omitempty"`
}

func newGalleryCommand(opts *rootOptions) *cobra.Command {
	var records string

	cmd := &cobra.Command{
		Use:   "gallery <file>",
		Short: "Build the hand-off a viewer would receive for a media file",
		Long: `Build the list a viewer is handed for a media file: by default a gallery of
every photo and video in the file's directory for a photo or video, and a
playlist of the directory's tracks for an audio file. --records picks the record
schema instead: photos, videos, tracks, or items for the whole listing.

The list is written to a transfer buffer, received as a viewer would, and a
summary of the hand-off is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				item, err := itemForPath(a.cfg.Extensions, args[0])
				if err != nil {
					return err
				}
				if !item.Kind.IsMedia() {
					return fmt.Errorf("%w: %s", catalog.ErrNotViewable, item.Path)
				}

				schema := records
				if schema == "" {
					schema = recordsPhotos
					if item.Kind == mediatypes.KindAudio {
						schema = recordsTracks
					}
				}

				items, err := a.scanner.List(cmd.Context(), filepath.Dir(item.Path))
				if err != nil {
					return err
				}

				sum := handoffSummary{Records: schema, Selected: item.Path}
				switch schema {
				case recordsPhotos:
					photos, index := model.GalleryFromItems(items, item.Path)
					sum.Index = index
					err = roundTrip(a, &sum, photos, transfer.EncodePhoto, transfer.DecodePhoto,
						func(p model.Photo) string { return p.Text })
				case recordsVideos:
					videos, index := model.VideosFromItems(items, item.Path)
					sum.Index = index
					err = roundTrip(a, &sum, videos, transfer.EncodeVideo, transfer.DecodeVideo,
						func(v model.Video) string { return v.Title })
				case recordsTracks:
					tracks, index := model.PlaylistFromItems(items, item.Path)
					sum.Index = index
					err = roundTrip(a, &sum, tracks, transfer.EncodeAudio, transfer.DecodeAudio, trackLabel)
				case recordsItems:
					sum.Index = max(indexOfPath(items, item.Path), 0)
					err = roundTrip(a, &sum, items, transfer.EncodeFileItem, transfer.DecodeFileItem,
						func(i model.FileItem) string { return i.Name })
				default:
					return fmt.Errorf("unknown record schema %q", schema)
				}
				if err != nil {
					return err
				}
				return printHandoff(newPrinter(cmd, opts), sum)
			})
		},
	}

	cmd.Flags().StringVar(&records, "records", "", "record schema: photos, videos, tracks or items")
	return cmd
}

// roundTrip writes records to a transfer buffer, receives them the way a
// viewer would and fills in sum.
func roundTrip[T any](a *app, sum *handoffSummary, records []T, enc transfer.Encoder[T], dec transfer.Decoder[T], label func(T) string) error {
	h, err := transfer.BeginTransfer(a.alloc, records, enc)
	if err != nil {
		return fmt.Errorf("failed to prepare %s: %w", sum.Records, err)
	}
	sum.Handle = int64(h)
	sum.Bytes = a.alloc.LiveBytes()

	received, err := transfer.EndTransfer(a.alloc, h, dec)
	if err != nil {
		return fmt.Errorf("failed to receive %s: %w", sum.Records, err)
	}
	sum.Count = len(received)
	sum.LiveAfter = a.alloc.Live()
	if len(received) > 0 {
		sum.First = label(received[0])
		sum.Last = label(received[len(received)-1])
	}
	return nil
}

// receiveViewer consumes a viewer hand-off from ctrl and summarizes it.
func receiveViewer(a *app, ctrl *catalog.Controller, selected string, v catalog.Viewer) (handoffSummary, error) {
	sum := handoffSummary{Selected: selected, Index: v.Index, Count: v.Count}

	switch v.Kind {
	case mediatypes.KindPhoto:
		sum.Records = recordsPhotos
		sum.Handle = int64(v.Handle)
		sum.Bytes = a.alloc.LiveBytes()
		photos, err := ctrl.ReceiveGallery(v)
		if err != nil {
			return sum, err
		}
		sum.Count = len(photos)
		if len(photos) > 0 {
			sum.First = photos[0].Text
			sum.Last = photos[len(photos)-1].Text
		}
	case mediatypes.KindAudio:
		sum.Records = recordsTracks
		if len(v.Tracks) > 0 {
			sum.First = trackLabel(v.Tracks[0])
			sum.Last = trackLabel(v.Tracks[len(v.Tracks)-1])
		}
	case mediatypes.KindVideo:
		sum.Records = recordsVideos
		sum.Count = 1
		sum.First = v.Video.Title
		sum.Last = v.Video.Title
	}
	sum.LiveAfter = a.alloc.Live()
	return sum, nil
}

func printHandoff(p *printer, sum handoffSummary) error {
	if p.json {
		return p.JSON(sum)
	}
	if sum.Handle != 0 {
		p.Linef("%d %s in %d bytes, handle %d, selected index %d", sum.Count, sum.Records, sum.Bytes, sum.Handle, sum.Index)
	} else {
		p.Linef("%d %s, selected index %d", sum.Count, sum.Records, sum.Index)
	}
	if sum.Count > 0 {
		p.Linef("first %s, last %s", sum.First, sum.Last)
	}
	return nil
}

func trackLabel(t model.Audio) string {
	return t.Artist + " - " + t.Title
}

func indexOfPath(items []model.FileItem, path string) int {
	for i, it := range items {
		if it.Path == path {
			return i
		}
	}
	return -1
}
