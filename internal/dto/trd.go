package dto

// UploadTRDRequest contains the metadata submitted alongside a TRD/CCD file.
type UploadTRDRequest struct {
	Type        string `form:"tipo" json:"tipo" binding:"required"`
	Description string `form:"descripcion" json:"descripcion"`
}
