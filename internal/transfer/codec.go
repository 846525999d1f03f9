package transfer

import (
	"media-catalog/internal/mediatypes"
	"media-catalog/internal/model"
)

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// EncodePhoto writes id, owner_id, date, photo_url, preview_url, is_gif, text.
func EncodePhoto(w *Writer, p model.Photo) {
	w.WriteInt(p.ID)
	w.WriteInt(p.OwnerID)
	w.WriteLong(p.Date)
	w.WriteString(p.PhotoURL)
	w.WriteString(p.PreviewURL)
	w.WriteBool(p.IsGif)
	w.WriteString(p.Text)
}

// DecodePhoto mirrors EncodePhoto.
func DecodePhoto(r *Reader) model.Photo {
	return model.Photo{
		ID:         r.ReadInt(),
		OwnerID:    r.ReadInt(),
		Date:       r.ReadLong(),
		PhotoURL:   r.ReadString(),
		PreviewURL: r.ReadString(),
		IsGif:      r.ReadBool(),
		Text:       r.ReadString(),
	}
}

// EncodeVideo writes id, owner_id, title, description, link, date, image,
// repeat, duration. An empty image is written as absent.
func EncodeVideo(w *Writer, v model.Video) {
	w.WriteInt(v.ID)
	w.WriteInt(v.OwnerID)
	w.WriteString(v.Title)
	w.WriteString(v.Description)
	w.WriteString(v.Link)
	w.WriteLong(v.Date)
	w.WriteOptString(optional(v.Image))
	w.WriteBool(v.Repeat)
	w.WriteInt(v.Duration)
}

// DecodeVideo mirrors EncodeVideo.
func DecodeVideo(r *Reader) model.Video {
	return model.Video{
		ID:          r.ReadInt(),
		OwnerID:     r.ReadInt(),
		Title:       r.ReadString(),
		Description: r.ReadString(),
		Link:        r.ReadString(),
		Date:        r.ReadLong(),
		Image:       r.ReadString(),
		Repeat:      r.ReadBool(),
		Duration:    r.ReadInt(),
	}
}

// EncodeAudio writes id, owner_id, artist, title, duration, url, is_local,
// thumb_image. An empty thumbnail is written as absent.
func EncodeAudio(w *Writer, a model.Audio) {
	w.WriteInt(a.ID)
	w.WriteInt(a.OwnerID)
	w.WriteString(a.Artist)
	w.WriteString(a.Title)
	w.WriteInt(a.Duration)
	w.WriteString(a.URL)
	w.WriteBool(a.IsLocal)
	w.WriteOptString(optional(a.ThumbImage))
}

// DecodeAudio mirrors EncodeAudio.
func DecodeAudio(r *Reader) model.Audio {
	return model.Audio{
		ID:         r.ReadInt(),
		OwnerID:    r.ReadInt(),
		Artist:     r.ReadString(),
		Title:      r.ReadString(),
		Duration:   r.ReadInt(),
		URL:        r.ReadString(),
		IsLocal:    r.ReadBool(),
		ThumbImage: r.ReadString(),
	}
}

// EncodeFileItem writes every FileItem field, kind first.
func EncodeFileItem(w *Writer, i model.FileItem) {
	w.WriteInt(int32(i.Kind))
	w.WriteString(i.Name)
	w.WriteString(i.Path)
	w.WriteString(i.ParentName)
	w.WriteString(i.ParentPath)
	w.WriteLong(i.ModifiedAt)
	w.WriteLong(i.Size)
	w.WriteBool(i.CanRead)
	w.WriteBool(i.IsSelected)
	w.WriteBool(i.HasTag)
	w.WriteInt(i.NameHash)
	w.WriteInt(i.PathHash)
}

// DecodeFileItem mirrors EncodeFileItem.
func DecodeFileItem(r *Reader) model.FileItem {
	return model.FileItem{
		Kind:       mediatypes.KindFromInt(int(r.ReadInt())),
		Name:       r.ReadString(),
		Path:       r.ReadString(),
		ParentName: r.ReadString(),
		ParentPath: r.ReadString(),
		ModifiedAt: r.ReadLong(),
		Size:       r.ReadLong(),
		CanRead:    r.ReadBool(),
		IsSelected: r.ReadBool(),
		HasTag:     r.ReadBool(),
		NameHash:   r.ReadInt(),
		PathHash:   r.ReadInt(),
	}
}
