package i18n

// 消息 key
const (
	MsgBookingSubmitted         = "booking.submitted"
	MsgBookingGenericError      = "booking.generic_error"
	MsgBookingRoomRequired      = "booking.room_required"
	MsgBookingInvalid           = "booking.invalid"
	MsgBookingEndTimeMissing    = "booking.end_time_missing"
	MsgBookingRoomBusy          = "booking.room_busy"
	MsgBookingRoomNotFound      = "booking.room_not_found"
	MsgWarnAvailabilityUpdate   = "booking.warn.availability_update"
	MsgWarnRefreshFailed        = "booking.warn.refresh_failed"
	MsgWarnEquipmentUnavailable = "booking.warn.equipment_unavailable"
	MsgRoomStatusFetchFailed    = "room.status_fetch_failed"
	MsgRoomNotFound             = "room.not_found"
	MsgExportGenerateFailed     = "export.generate_failed"
	MsgRateLimited              = "request.rate_limited"
	MsgStatusAvailable          = "status.available"
	MsgStatusScheduled          = "status.scheduled"
	MsgStatusInUse              = "status.in_use"
)

var catalog = map[string]map[string]string{
	Indonesian: {
		MsgBookingSubmitted:         "Peminjaman ruangan berhasil diajukan",
		MsgBookingGenericError:      "Gagal mengajukan peminjaman, silakan coba lagi",
		MsgBookingRoomRequired:      "Silakan pilih ruangan terlebih dahulu",
		MsgBookingInvalid:           "Data peminjaman tidak valid",
		MsgBookingEndTimeMissing:    "Waktu selesai tidak dapat dihitung",
		MsgBookingRoomBusy:          "Ruangan sedang diproses oleh pengajuan lain, silakan coba lagi",
		MsgBookingRoomNotFound:      "Ruangan tidak ditemukan",
		MsgWarnAvailabilityUpdate:   "Status ketersediaan ruangan gagal diperbarui",
		MsgWarnRefreshFailed:        "Status ruangan belum diperbarui, akan diperbarui otomatis",
		MsgWarnEquipmentUnavailable: "Sebagian peralatan yang dipilih tidak tersedia (%d)",
		MsgRoomStatusFetchFailed:    "Gagal memuat status ruangan, silakan coba lagi",
		MsgRoomNotFound:             "Ruangan tidak ditemukan",
		MsgExportGenerateFailed:     "Gagal membuat file ekspor",
		MsgRateLimited:              "Terlalu banyak permintaan, silakan coba lagi nanti",
		MsgStatusAvailable:          "Tersedia",
		MsgStatusScheduled:          "Terjadwal",
		MsgStatusInUse:              "Sedang Digunakan",
	},
	English: {
		MsgBookingSubmitted:         "Room booking submitted",
		MsgBookingGenericError:      "Failed to submit booking, please try again",
		MsgBookingRoomRequired:      "Please select a room first",
		MsgBookingInvalid:           "Invalid booking data",
		MsgBookingEndTimeMissing:    "End time could not be calculated",
		MsgBookingRoomBusy:          "The room is being booked by another request, please retry",
		MsgBookingRoomNotFound:      "Room not found",
		MsgWarnAvailabilityUpdate:   "Failed to update room availability",
		MsgWarnRefreshFailed:        "Room status not refreshed yet, it will refresh automatically",
		MsgWarnEquipmentUnavailable: "Some selected equipment is unavailable (%d)",
		MsgRoomStatusFetchFailed:    "Failed to load room status, please try again",
		MsgRoomNotFound:             "Room not found",
		MsgExportGenerateFailed:     "Failed to generate export file",
		MsgRateLimited:              "Too many requests, please try again later",
		MsgStatusAvailable:          "Available",
		MsgStatusScheduled:          "Scheduled",
		MsgStatusInUse:              "In Use",
	},
	Chinese: {
		MsgBookingSubmitted:         "房间预约已提交",
		MsgBookingGenericError:      "预约提交失败，请重试",
		MsgBookingRoomRequired:      "请先选择房间",
		MsgBookingInvalid:           "预约信息无效",
		MsgBookingEndTimeMissing:    "无法计算结束时间",
		MsgBookingRoomBusy:          "该房间正在处理其他预约，请稍后重试",
		MsgBookingRoomNotFound:      "房间不存在",
		MsgWarnAvailabilityUpdate:   "房间可用状态更新失败",
		MsgWarnRefreshFailed:        "房间状态暂未刷新，将自动更新",
		MsgWarnEquipmentUnavailable: "部分所选设备不可用（%d）",
		MsgRoomStatusFetchFailed:    "房间状态加载失败，请重试",
		MsgRoomNotFound:             "房间不存在",
		MsgExportGenerateFailed:     "生成导出文件失败",
		MsgRateLimited:              "请求过于频繁，请稍后再试",
		MsgStatusAvailable:          "空闲",
		MsgStatusScheduled:          "今日有安排",
		MsgStatusInUse:              "使用中",
	},
}
