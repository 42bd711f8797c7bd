package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrRoomLocked 房间提交锁已被其他请求持有
var ErrRoomLocked = errors.New("房间正在被其他预约请求处理")

// ErrSupersede 替换房间已批准预约的步骤失败
var ErrSupersede = errors.New("替换已批准预约失败")
